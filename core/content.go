package core

// Layout is the portal theming payload.
type Layout struct {
	Name            string `json:"nome"`
	Background      string `json:"background"`
	BackgroundColor string `json:"corBackground"`
	Logo            string `json:"logo"`
	Text            string `json:"text"`
	Text2           string `json:"text2"`
	Color           string `json:"color"`
	Color2          string `json:"color2"`
	Box             string `json:"box"`
}

// CarouselItem is one entry of the home-screen carousel.
type CarouselItem struct {
	ID          string `json:"id"`
	Title       string `json:"titulo"`
	Description string `json:"descricao,omitempty"`
	Image       string `json:"imagem"`
	Type        string `json:"tipo"`
	Link        string `json:"link,omitempty"`
	Order       int    `json:"ordem"`
	Featured    bool   `json:"destaque,omitempty"`
	Author      string `json:"autor,omitempty"`
	Category    string `json:"categoria,omitempty"`
	PurchaseURL string `json:"url_compra,omitempty"`
}

// CarouselQuery narrows a carousel request to a type or a single item.
type CarouselQuery struct {
	Type string
	ID   string
}

// Broadcast is one live-stream listing from the elive service.
type Broadcast struct {
	ID          string `json:"id"`
	Title       string `json:"titulo"`
	Description string `json:"descricao,omitempty"`
	URL         string `json:"url,omitempty"`
	StartsAt    string `json:"data_inicio,omitempty"`
	EndsAt      string `json:"data_fim,omitempty"`
}

// PodcastTrack is one playable item of a podcast release.
type PodcastTrack struct {
	ID          string `json:"dis_ite_id"`
	ReleaseID   string `json:"dis_id"`
	Number      string `json:"dis_ite_faixa"`
	Author      string `json:"dis_ite_autor"`
	Title       string `json:"dis_ite_titulo"`
	Description string `json:"dis_ite_descricao"`
	URL         string `json:"dis_ite_url"`
	Notes       string `json:"dis_ite_ficha"`
	Price       string `json:"dis_ite_valor"`
	File        string `json:"file"`
}

// Podcast is one audio release with its track listing.
type Podcast struct {
	ID     string                  `json:"dis_id"`
	Title  string                  `json:"dis_titulo"`
	Notes  string                  `json:"dis_ficha"`
	File   string                  `json:"file"`
	Tracks map[string]PodcastTrack `json:"files"`
}

// Contact is the portal contact card.
type Contact struct {
	Email   string `json:"email"`
	Phone   string `json:"telefone"`
	Address string `json:"endereco"`
}

// ContactMessage is an outgoing contact-form submission.
type ContactMessage struct {
	Name    string
	Email   string
	Message string
}
