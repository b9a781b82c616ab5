package specification

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContentOwnedByUser struct {
	UserID uuid.UUID
}

func (s ContentOwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("contents.user_id = ?", s.UserID)
}

type ByProcessingStatus struct {
	Status string
}

func (s ByProcessingStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("processing_status = ?", s.Status)
}

// searchable maps logical fields to SQL expressions; key_concepts is jsonb
var searchable = map[string]string{
	"name":         "name",
	"content":      "content",
	"key_concepts": "key_concepts::text",
}

// ContentTextSearch matches any term, case-insensitively, as a substring of any field
type ContentTextSearch struct {
	Terms  []string
	Fields []string
}

func (s ContentTextSearch) Apply(db *gorm.DB) *gorm.DB {
	var clauses []string
	var args []interface{}
	for _, term := range s.Terms {
		if term == "" {
			continue
		}
		pattern := "%" + EscapeLike(term) + "%"
		for _, field := range s.Fields {
			column, ok := searchable[field]
			if !ok {
				continue
			}
			clauses = append(clauses, column+" ILIKE ?")
			args = append(args, pattern)
		}
	}
	if len(clauses) == 0 {
		return db.Where("1 = 0")
	}
	return db.Where(strings.Join(clauses, " OR "), args...)
}

// EscapeLike escapes LIKE wildcards with the default backslash escape
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
