package api

import "time"

// Blog is a news article.
type Blog struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	Summary         string    `json:"summary"`
	Content         string    `json:"content"`
	Path            string    `json:"path,omitempty"`
	MetaTitle       string    `json:"meta_title,omitempty"`
	MetaDescription string    `json:"meta_description,omitempty"`
	MetaKeywords    string    `json:"meta_keywords,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
	UpdatedAt       time.Time `json:"updated_at,omitzero"`
}

// Ref is the URL segment used to link to the blog.
func (b Blog) Ref() string { return ContentRef(b.Path, b.ID) }

// Solution is a product or service offering.
type Solution struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"image_url,omitempty"`
	Path            string    `json:"path,omitempty"`
	MetaTitle       string    `json:"meta_title,omitempty"`
	MetaDescription string    `json:"meta_description,omitempty"`
	MetaKeywords    string    `json:"meta_keywords,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
	UpdatedAt       time.Time `json:"updated_at,omitzero"`
}

// Ref is the URL segment used to link to the solution.
func (s Solution) Ref() string { return ContentRef(s.Path, s.ID) }

// Carousel is a homepage carousel image record.
type Carousel struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	ImageURL    string    `json:"image_url"`
	AltText     string    `json:"alt_text"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
	Position    string    `json:"position"`
	Rotation    int       `json:"rotation"`
	ImageWidth  int       `json:"image_width,omitempty"`
	ImageHeight int       `json:"image_height,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// SocialLink is a footer social media link.
type SocialLink struct {
	ID        int    `json:"id"`
	Platform  string `json:"platform"`
	URL       string `json:"url"`
	SortOrder int    `json:"sort_order"`
}

// Contact is a message submitted through the contact form.
type Contact struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// ContactRequest is the public contact form payload.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Category is a news category with its article count.
type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// LoginResponse is returned by a successful admin login.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// CredentialsUpdate changes the admin username and/or password.
type CredentialsUpdate struct {
	CurrentPassword string `json:"current_password"`
	NewUsername     string `json:"new_username,omitempty"`
	NewPassword     string `json:"new_password,omitempty"`
}

// CredentialsResponse carries the token issued after a credentials change.
type CredentialsResponse struct {
	Message  string `json:"message"`
	Token    string `json:"token"`
	Username string `json:"username"`
}
