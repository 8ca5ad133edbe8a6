package repository

import (
	"fmt"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

// stockPlan is a batch of adjustments resolved against the product documents
// read inside a transaction. Firestore transactions require every read before
// the first write, so callers read through planStock, do any other reads, and
// only then call write.
type stockPlan struct {
	order    []string
	products map[string]*model.Product
	moves    []model.StockMovement
}

func planStock(tx *firestore.Transaction, client *firestore.Client, adjustments []StockAdjustment, now time.Time) (*stockPlan, error) {
	plan := &stockPlan{products: make(map[string]*model.Product)}
	if len(adjustments) == 0 {
		return plan, nil
	}

	col := client.Collection(model.CollectionProducts)
	refs := make([]*firestore.DocumentRef, len(adjustments))
	for i, a := range adjustments {
		refs[i] = col.Doc(a.ProductID)
	}
	snaps, err := tx.GetAll(refs)
	if err != nil {
		return nil, translate(err)
	}

	for i, snap := range snaps {
		if !snap.Exists() {
			if adjustments[i].IgnoreMissing {
				continue
			}
			return nil, fmt.Errorf("product %s: %w", snap.Ref.ID, ErrNotFound)
		}
		if _, seen := plan.products[snap.Ref.ID]; seen {
			continue
		}
		var p model.Product
		if err := snap.DataTo(&p); err != nil {
			return nil, err
		}
		p.ID = snap.Ref.ID
		plan.products[p.ID] = &p
		plan.order = append(plan.order, p.ID)
	}

	for _, a := range adjustments {
		p := plan.products[a.ProductID]
		if p == nil {
			continue
		}
		before := p.Quantity
		after := before + a.Delta
		if after < 0 && !a.AllowNegative {
			return nil, fmt.Errorf("%s: %w (have %d, need %d)", p.Name, ErrNegativeStock, before, -a.Delta)
		}
		p.Quantity = after
		p.UpdatedAt = now
		plan.moves = append(plan.moves, model.StockMovement{
			ProductID:      p.ID,
			ProductName:    p.Name,
			Delta:          a.Delta,
			QuantityBefore: before,
			QuantityAfter:  after,
			Reason:         a.Reason,
			ReferenceID:    a.ReferenceID,
			UserID:         a.UserID,
			CreatedAt:      now,
		})
	}
	return plan, nil
}

// write stages the quantity updates and movement documents on tx.
func (p *stockPlan) write(tx *firestore.Transaction, client *firestore.Client) error {
	col := client.Collection(model.CollectionProducts)
	for _, id := range p.order {
		prod := p.products[id]
		if err := tx.Update(col.Doc(id), []firestore.Update{
			{Path: "quantity", Value: prod.Quantity},
			{Path: "updatedAt", Value: prod.UpdatedAt},
		}); err != nil {
			return err
		}
	}
	movements := client.Collection(model.CollectionStockMovements)
	for _, mv := range p.moves {
		if err := tx.Create(movements.Doc(uuid.NewString()), mv); err != nil {
			return err
		}
	}
	return nil
}

// result returns the adjusted products in the order they were first named.
func (p *stockPlan) result() []model.Product {
	out := make([]model.Product, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.products[id])
	}
	return out
}
