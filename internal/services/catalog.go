package services

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/bookhaven-backend/internal/domain/storefront"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

// CategoryAll selects every book.
const CategoryAll = "all"

//go:embed catalog_books.yaml
var defaultCatalog []byte

type catalogFile struct {
	Books []types.Book `yaml:"books"`
}

type CatalogService interface {
	// List returns books in category, or all of them for "" and "all".
	List(category string) []types.Book
	Get(id string) (types.Book, bool)
	Categories() []string
}

type catalogService struct {
	log   *logger.Logger
	books []types.Book
	byID  map[string]int
}

// NewCatalogService loads the embedded catalog, or overridePath when set.
func NewCatalogService(log *logger.Logger, overridePath string) (CatalogService, error) {
	serviceLog := log.With("service", "CatalogService")
	raw := defaultCatalog
	source := "embedded"
	if p := strings.TrimSpace(overridePath); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		raw, source = b, p
	}
	books, err := parseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", source, err)
	}
	svc := &catalogService{log: serviceLog, books: books, byID: make(map[string]int, len(books))}
	for i, b := range books {
		svc.byID[b.ID] = i
	}
	serviceLog.Info("catalog loaded", "source", source, "books", len(books))
	return svc, nil
}

func parseCatalog(raw []byte) ([]types.Book, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	out := make([]types.Book, 0, len(f.Books))
	for i, b := range f.Books {
		b.ID = strings.TrimSpace(b.ID)
		if b.ID == "" {
			return nil, fmt.Errorf("book %d has no id", i)
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("duplicate book id %q", b.ID)
		}
		seen[b.ID] = true
		b.Category = strings.ToLower(strings.TrimSpace(b.Category))
		out = append(out, b)
	}
	return out, nil
}

func (s *catalogService) List(category string) []types.Book {
	category = strings.ToLower(strings.TrimSpace(category))
	out := make([]types.Book, 0, len(s.books))
	for _, b := range s.books {
		if category == "" || category == CategoryAll || b.Category == category {
			out = append(out, b)
		}
	}
	return out
}

func (s *catalogService) Get(id string) (types.Book, bool) {
	i, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return types.Book{}, false
	}
	return s.books[i], true
}

func (s *catalogService) Categories() []string {
	set := map[string]bool{}
	for _, b := range s.books {
		if b.Category != "" {
			set[b.Category] = true
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
