package mongostore

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaimeStill/resource-lab/pkg/query"
	"github.com/JaimeStill/resource-lab/pkg/store"
)

// filterDocument renders a filter as a bson document.
// The id field targets _id and is matched as an ObjectID when it parses as one.
func filterDocument(f query.Filter) bson.M {
	doc := bson.M{}
	for field, value := range f {
		if field == store.FieldID {
			if s, ok := value.(string); ok {
				if oid, err := primitive.ObjectIDFromHex(s); err == nil {
					doc[mongoID] = oid
					continue
				}
			}
			doc[mongoID] = value
			continue
		}
		doc[field] = value
	}
	return doc
}

func sortDocument(s *query.Sort) bson.D {
	field := s.Field
	if field == store.FieldID {
		field = mongoID
	}
	return bson.D{{Key: field, Value: s.Direction()}}
}

// toEntity converts a decoded document into an Entity, exposing _id as a hex id
// and converting driver value types to plain Go values.
func toEntity(doc bson.M) store.Entity {
	e := make(store.Entity, len(doc))
	for k, v := range doc {
		if k == mongoID {
			if oid, ok := v.(primitive.ObjectID); ok {
				e[store.FieldID] = oid.Hex()
			} else {
				e[store.FieldID] = v
			}
			continue
		}
		e[k] = plain(v)
	}
	return e
}

func plain(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case bson.M:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = plain(inner)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(t))
		for _, el := range t {
			m[el.Key] = plain(el.Value)
		}
		return m
	case bson.A:
		a := make([]any, len(t))
		for i, inner := range t {
			a[i] = plain(inner)
		}
		return a
	default:
		return v
	}
}
