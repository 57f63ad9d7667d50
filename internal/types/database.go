package types

// MySQLFilter is the body of a swap search. Conditions are joined with AND.
type MySQLFilter struct {
	Query  []MySQLQuery `json:"query"`
	Order  *MySQLOrder  `json:"order,omitempty"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

type MySQLQuery struct {
	Column string `json:"column"`
	Op     string `json:"op"`
	Query  string `json:"query"`
}

type MySQLOrder struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}
