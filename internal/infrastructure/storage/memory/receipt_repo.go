package memory

import (
	"context"
	"time"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/id"
	"rollstock/internal/domain"
	"rollstock/internal/domain/documents/receipt"
)

// ReceiptRepository is a map-backed receipt.Repository.
type ReceiptRepository struct {
	base
	docs map[id.ID]*receipt.GoodsReceipt
}

// NewReceiptRepository creates an empty receipt repository.
func NewReceiptRepository() *ReceiptRepository {
	return &ReceiptRepository{docs: make(map[id.ID]*receipt.GoodsReceipt)}
}

var _ receipt.Repository = (*ReceiptRepository)(nil)

func (r *ReceiptRepository) Create(ctx context.Context, doc *receipt.GoodsReceipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[doc.ID]; ok {
		return apperror.NewDuplicate("goods receipt", "id", doc.ID.String())
	}
	r.docs[doc.ID] = cloneReceipt(doc)
	return nil
}

func (r *ReceiptRepository) Get(ctx context.Context, docID id.ID) (*receipt.GoodsReceipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("goods receipt", docID.String())
	}
	return cloneReceipt(doc), nil
}

func (r *ReceiptRepository) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*receipt.GoodsReceipt], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*receipt.GoodsReceipt
	for _, doc := range r.docs {
		if !matchSearch(filter.Search, doc.Number, doc.SupplierRef) {
			continue
		}
		out = append(out, cloneReceipt(doc))
	}
	sortByCreatedAt(out, orderNewestFirst(filter.OrderBy), func(d *receipt.GoodsReceipt) time.Time { return d.CreatedAt })
	total := int64(len(out))
	return domain.ListResult[*receipt.GoodsReceipt]{
		Items:      paginate(out, filter.Limit, filter.Offset),
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func cloneReceipt(doc *receipt.GoodsReceipt) *receipt.GoodsReceipt {
	out := *doc
	out.Lines = make([]receipt.Line, len(doc.Lines))
	for i, line := range doc.Lines {
		line.Attributes = line.Attributes.Clone()
		line.BatchIDs = append([]id.ID(nil), line.BatchIDs...)
		out.Lines[i] = line
	}
	return &out
}
