package query

import (
	"slices"

	"github.com/vegasq/tyr/table"
)

// OrderItem is one ORDER BY key.
type OrderItem struct {
	Column string
	Desc   bool
}

// Descriptor is the restricted form of a SELECT that the pipeline can
// evaluate. It is immutable; accessors return copies.
type Descriptor struct {
	source    string
	condition table.Expr
	selection []table.Expr
	orderBy   []OrderItem
	offset    int64
	hasOffset bool
	limit     int64
	hasLimit  bool
}

// Source is the path or URL named in FROM.
func (d *Descriptor) Source() string { return d.source }

// Condition is the WHERE predicate, or nil when every row is kept.
func (d *Descriptor) Condition() table.Expr { return d.condition }

// Selection is the projection list in declared order.
func (d *Descriptor) Selection() []table.Expr { return slices.Clone(d.selection) }

// OrderBy lists the sort keys in declared order.
func (d *Descriptor) OrderBy() []OrderItem { return slices.Clone(d.orderBy) }

// Offset reports the OFFSET value and whether one was given.
func (d *Descriptor) Offset() (int64, bool) { return d.offset, d.hasOffset }

// Limit reports the LIMIT value and whether one was given.
func (d *Descriptor) Limit() (int64, bool) { return d.limit, d.hasLimit }
