package domain

// User is a registered user as listed by the user directory. Display
// fields are snapshotted into the presence registry on first connect.
type User struct {
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
