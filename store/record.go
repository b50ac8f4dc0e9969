package store

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Record is a schemaless entity record as stored in DynamoDB.
type Record map[string]types.AttributeValue

// ID returns the numeric id attribute of a record.
func (r Record) ID() (int64, bool) {
	n, ok := r["id"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Condition is an equality filter applied to a kind-scoped query.
type Condition struct {
	// Attr is the attribute name to compare.
	Attr string

	// Equals is the string value the attribute must equal.
	Equals string
}

// QueryInput defines parameters for a paged kind-scoped query.
type QueryInput struct {
	// Kind selects the table to query.
	Kind string

	// Filter optionally restricts results to matching records.
	Filter *Condition

	// Limit is the page size. Must be positive.
	Limit int32

	// Cursor resumes a prior query from where its page ended.
	// Empty starts from the beginning.
	Cursor string
}

// QueryPage is one page of query results.
type QueryPage struct {
	// Items holds at most Limit records in the store's stable ordering.
	Items []Record

	// NextCursor resumes after this page. Empty means no further results.
	NextCursor string
}
