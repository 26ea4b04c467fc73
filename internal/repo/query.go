package repo

// Operation is a comparison operator usable in a Condition.
type Operation string

const (
	Equal       Operation = "="
	GreaterThan Operation = ">"
	LessThan    Operation = "<"
	GreaterEq   Operation = ">="
	LessEq      Operation = "<="
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Condition is one field comparison; conditions in a Query are ANDed.
type Condition struct {
	Field string
	Op    Operation
	Value any
}

type OrderField struct {
	Field     string
	Direction Direction
}

// Query describes filtering, ordering and pagination for Repo operations.
type Query struct {
	Conds       []Condition
	OrderFields []OrderField
	Limit       int
	Offset      int
}

func NewQuery() *Query {
	return &Query{}
}

// Where appends an equality condition.
func (q *Query) Where(field string, value any) *Query {
	return q.WhereOp(field, Equal, value)
}

// WhereOp appends a condition with an explicit operator.
func (q *Query) WhereOp(field string, op Operation, value any) *Query {
	q.Conds = append(q.Conds, Condition{Field: field, Op: op, Value: value})
	return q
}

func (q *Query) Order(field string, direction Direction) *Query {
	q.OrderFields = append(q.OrderFields, OrderField{Field: field, Direction: direction})
	return q
}

func (q *Query) SetLimit(limit int) *Query {
	q.Limit = limit
	return q
}

func (q *Query) SetOffset(offset int) *Query {
	q.Offset = offset
	return q
}
