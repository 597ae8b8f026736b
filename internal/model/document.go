package model

import "time"

// Document represents a stored PDF and its sharing state.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
//
// SharedWith never contains OwnerID: owner access is implicit.
// AccessTokens and ShareToken are capabilities and are never serialized in responses;
// the viewer payload carries a single freshly minted token instead (DocumentView).
type Document struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	DisplayName   string    `json:"display_name"`
	Filename      string    `json:"filename"`
	BlobRef       string    `json:"blob_ref"`
	Size          int64     `json:"size"`
	ContentType   string    `json:"content_type"`
	OwnerID       string    `json:"owner_id"`
	SharedWith    []string  `json:"-"`
	InvitedEmails []string  `json:"-"`
	ShareToken    string    `json:"-"`
	AccessTokens  []string  `json:"-"`
	Comments      []Comment `json:"comments"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsViewableBy reports whether userID holds persistent view access,
// either as the owner or as a member of the shared list.
func (d *Document) IsViewableBy(userID string) bool {
	if userID == "" {
		return false
	}
	if d.OwnerID == userID {
		return true
	}
	for _, id := range d.SharedWith {
		if id == userID {
			return true
		}
	}
	return false
}

// HasAccessToken reports whether tok is currently in the document's token list.
func (d *Document) HasAccessToken(tok string) bool {
	if tok == "" {
		return false
	}
	for _, t := range d.AccessTokens {
		if t == tok {
			return true
		}
	}
	return false
}

// IsInvited reports whether email is on the owner's invite allowlist.
func (d *Document) IsInvited(email string) bool {
	for _, e := range d.InvitedEmails {
		if e == email {
			return true
		}
	}
	return false
}

// DocumentView is the payload returned to a viewer: the document plus the
// proxy access token minted for this particular view.
type DocumentView struct {
	Document
	AccessToken string `json:"access_token"`
}

// MaxCommentDepth is the deepest tier a comment node may occupy:
// a top-level comment sits at depth 0, a reply at 1, a nested reply at 2.
const MaxCommentDepth = 2

// Comment is a node in a document's comment tree. ParentID and Depth address
// the node within the tree; they are persistence concerns and not serialized.
type Comment struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"-"`
	ParentID   string    `json:"-"`
	Depth      int       `json:"-"`
	Text       string    `json:"text"`
	Author     Author    `json:"author"`
	CreatedAt  time.Time `json:"created_at"`
	Replies    []Comment `json:"replies"`
}

// Author is a tagged authorship variant: a registered user reference
// (UserID set, Guest false) or an inline guest descriptor (Name plus a
// synthetic, never-deliverable Email, Guest true).
type Author struct {
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Guest  bool   `json:"guest"`
}

// RegisteredAuthor builds an Author for an authenticated user.
func RegisteredAuthor(userID string) Author {
	return Author{UserID: userID}
}

// GuestAuthor builds an Author for an unregistered commenter. The email is a
// timestamp-derived placeholder, unique per call, never validated or delivered.
func GuestAuthor(name, syntheticEmail string) Author {
	return Author{Name: name, Email: syntheticEmail, Guest: true}
}

// InviteResult is returned after inviting emails to a share link.
type InviteResult struct {
	Link          string   `json:"link"`
	InvitedEmails []string `json:"invited_emails"`
}

// InvitedUsers lists who currently has conditional or persistent access.
type InvitedUsers struct {
	InvitedEmails []string `json:"invited_emails"`
	SharedWith    []string `json:"shared_with"`
}
