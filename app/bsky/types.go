package bsky

import (
	"encoding/json"
	"fmt"
)

const (
	ThreadViewPostType = "app.bsky.feed.defs#threadViewPost"
)

type Author struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

type BlobRef struct {
	Link string `json:"$link"`
}

type Blob struct {
	Ref      BlobRef `json:"ref"`
	MimeType string  `json:"mimeType"`
}

type EmbedImage struct {
	Alt   string `json:"alt"`
	Image Blob   `json:"image"`
}

type Media struct {
	Type string `json:"type"`
}

type External struct {
	URI         string `json:"uri"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type Embed struct {
	Type     string       `json:"$type,omitempty"`
	Images   []EmbedImage `json:"images,omitempty"`
	Media    *Media       `json:"media,omitempty"`
	External *External    `json:"external,omitempty"`
}

// PostRecord is the app.bsky.feed.post record. Reply is kept raw since only
// its presence matters.
type PostRecord struct {
	Text      string          `json:"text"`
	CreatedAt string          `json:"createdAt"`
	Langs     []string        `json:"langs,omitempty"`
	Reply     json.RawMessage `json:"reply,omitempty"`
	Embed     *Embed          `json:"embed,omitempty"`
}

type PostView struct {
	URI         string     `json:"uri"`
	CID         string     `json:"cid"`
	Author      Author     `json:"author"`
	Record      PostRecord `json:"record"`
	ReplyCount  int64      `json:"replyCount"`
	RepostCount int64      `json:"repostCount"`
	LikeCount   int64      `json:"likeCount"`
	IndexedAt   string     `json:"indexedAt"`
}

type Reason struct {
	Type string `json:"$type"`
}

type FeedViewPost struct {
	Post   PostView        `json:"post"`
	Reply  json.RawMessage `json:"reply,omitempty"`
	Reason *Reason         `json:"reason,omitempty"`
}

type FeedPage struct {
	Feed   []FeedViewPost `json:"feed"`
	Cursor string         `json:"cursor,omitempty"`
}

// ThreadViewPost is one node of a thread. Blocked and not-found nodes carry
// a different $type and an empty Post.
type ThreadViewPost struct {
	Type    string           `json:"$type"`
	Post    PostView         `json:"post"`
	Replies []ThreadViewPost `json:"replies,omitempty"`
}

type Session struct {
	DID        string `json:"did"`
	Handle     string `json:"handle"`
	AccessJWT  string `json:"accessJwt"`
	RefreshJWT string `json:"refreshJwt"`
}

// Valid reports whether both tokens are present.
func (s *Session) Valid() bool {
	return s != nil && s.AccessJWT != "" && s.RefreshJWT != ""
}

// APIError is the XRPC error body returned with non-2xx responses.
type APIError struct {
	Status  int    `json:"-"`
	Name    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Name + ": " + e.Message
	}
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("XRPC request failed with status %d", e.Status)
}

type threadResponse struct {
	Thread ThreadViewPost `json:"thread"`
}

type createSessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}
