package repositories

import (
	"context"

	"shop-lab/domain"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

type IProductIndex interface {
	Index(product domain.Product) error
	Remove(id uuid.UUID) error
	Search(ctx context.Context, term string, limit int) ([]uuid.UUID, error)
}

// ProductIndex keeps a full-text index of catalog entries so clients can
// search by name or description fragments. The index is derived data:
// Badger remains the source of truth and hits are resolved back through
// the product repository.
type ProductIndex struct {
	writer *bluge.Writer
}

func NewProductIndex(writer *bluge.Writer) *ProductIndex {
	return &ProductIndex{writer: writer}
}

func (i *ProductIndex) Index(product domain.Product) error {
	doc := bluge.NewDocument(product.ID.String()).
		AddField(bluge.NewTextField("name", product.Name).StoreValue()).
		AddField(bluge.NewTextField("description", product.Description))
	return i.writer.Update(doc.ID(), doc)
}

func (i *ProductIndex) Remove(id uuid.UUID) error {
	doc := bluge.NewDocument(id.String())
	return i.writer.Delete(doc.ID())
}

func (i *ProductIndex) Search(ctx context.Context, term string, limit int) ([]uuid.UUID, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	query := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(term).SetField("name")).
		AddShould(bluge.NewMatchQuery(term).SetField("description"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				if id, parseErr := uuid.ParseBytes(value); parseErr == nil {
					ids = append(ids, id)
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}
