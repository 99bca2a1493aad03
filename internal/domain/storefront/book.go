package storefront

// Book is a catalog entry. Its fields are authoritative over whatever a client
// sends when the same id is added to a cart.
type Book struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Author   string `yaml:"author" json:"author"`
	Price    Money  `yaml:"price" json:"price"`
	Image    string `yaml:"image" json:"image"`
	Category string `yaml:"category" json:"category"`
}

func (b Book) AsNewItem() NewItem {
	return NewItem{ID: b.ID, Title: b.Title, Author: b.Author, Price: b.Price, Image: b.Image}
}
