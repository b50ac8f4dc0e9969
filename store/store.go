package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/stevedore/internal/cursor"
)

// batchGetMax is the DynamoDB BatchGetItem key limit per request.
const batchGetMax = 100

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store provides kind-addressed record operations over DynamoDB.
type Store struct {
	client DynamoAPI
	config Config
}

// New creates a new Store instance.
func New(client DynamoAPI, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
	}
}

// tableFor resolves the table holding a kind.
func (s *Store) tableFor(kind string) (string, error) {
	table, ok := s.config.Tables[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return table, nil
}

// idKey builds the primary key for a numeric record id.
func idKey(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
	}
}

// Get retrieves a record by kind and id, returning ErrNotFound if missing.
func (s *Store) Get(ctx context.Context, kind string, id int64) (Record, error) {
	table, err := s.tableFor(kind)
	if err != nil {
		return nil, err
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       idKey(id),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}

	return Record(result.Item), nil
}

// Put writes a record under kind and id, overwriting any prior version.
// The id attribute is set from the key regardless of the record contents.
func (s *Store) Put(ctx context.Context, kind string, id int64, rec Record) error {
	table, err := s.tableFor(kind)
	if err != nil {
		return err
	}

	item := make(map[string]types.AttributeValue, len(rec)+1)
	for k, v := range rec {
		item[k] = v
	}
	item["id"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})
	return err
}

// Delete removes a record. Deleting an absent record is a no-op.
func (s *Store) Delete(ctx context.Context, kind string, id int64) error {
	table, err := s.tableFor(kind)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       idKey(id),
	})
	return err
}

// BatchGet retrieves multiple records of one kind. Results preserve the
// input id order; ids with no record are skipped.
func (s *Store) BatchGet(ctx context.Context, kind string, ids []int64) ([]Record, error) {
	table, err := s.tableFor(kind)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	byID := make(map[int64]Record, len(ids))
	for start := 0; start < len(ids); start += batchGetMax {
		end := start + batchGetMax
		if end > len(ids) {
			end = len(ids)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, idKey(id))
		}

		// Retry unprocessed keys until DynamoDB has served them all.
		request := map[string]types.KeysAndAttributes{table: {Keys: keys}}
		for len(request) > 0 {
			out, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: request,
			})
			if err != nil {
				return nil, err
			}
			for _, raw := range out.Responses[table] {
				rec := Record(raw)
				if id, ok := rec.ID(); ok {
					byID[id] = rec
				}
			}
			request = out.UnprocessedKeys
		}
	}

	records := make([]Record, 0, len(byID))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// AllocateID atomically allocates the next numeric id for a kind.
func (s *Store) AllocateID(ctx context.Context, kind string) (int64, error) {
	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.config.CounterTable),
		Key: map[string]types.AttributeValue{
			"kind": &types.AttributeValueMemberS{Value: kind},
		},
		UpdateExpression: aws.String("ADD #seq :one"),
		ExpressionAttributeNames: map[string]string{
			"#seq": "seq",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, err
	}

	n, ok := out.Attributes["seq"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("stevedore: counter for %q returned no sequence value", kind)
	}
	return strconv.ParseInt(n.Value, 10, 64)
}

// QueryPage runs a kind-scoped filtered query and returns one page.
// It reads one record past the limit to decide whether a continuation
// cursor is needed; the cursor marks the last record actually returned.
func (s *Store) QueryPage(ctx context.Context, input QueryInput) (QueryPage, error) {
	table, err := s.tableFor(input.Kind)
	if err != nil {
		return QueryPage{}, err
	}
	if input.Limit <= 0 {
		return QueryPage{}, fmt.Errorf("stevedore: query limit must be positive, got %d", input.Limit)
	}

	scan := &dynamodb.ScanInput{TableName: aws.String(table)}
	if input.Filter != nil {
		scan.FilterExpression = aws.String("#attr = :val")
		scan.ExpressionAttributeNames = map[string]string{"#attr": input.Filter.Attr}
		scan.ExpressionAttributeValues = map[string]types.AttributeValue{
			":val": &types.AttributeValueMemberS{Value: input.Filter.Equals},
		}
	}
	if input.Cursor != "" {
		kind, id, err := cursor.Decode(input.Cursor)
		if err != nil || kind != input.Kind {
			return QueryPage{}, ErrBadCursor
		}
		scan.ExclusiveStartKey = idKey(id)
	}

	var items []Record
	paginator := dynamodb.NewScanPaginator(s.client, scan)
	for paginator.HasMorePages() && int32(len(items)) <= input.Limit {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return QueryPage{}, err
		}
		for _, raw := range page.Items {
			items = append(items, Record(raw))
			if int32(len(items)) > input.Limit {
				break
			}
		}
	}

	result := QueryPage{}
	if int32(len(items)) > input.Limit {
		items = items[:input.Limit]
		last, ok := items[len(items)-1].ID()
		if !ok {
			return QueryPage{}, fmt.Errorf("stevedore: record in %q has no numeric id", input.Kind)
		}
		result.NextCursor = cursor.Encode(input.Kind, last)
	}
	result.Items = items
	return result, nil
}

// Count returns the total number of records matching a filter by running
// the same query unbounded.
func (s *Store) Count(ctx context.Context, kind string, filter *Condition) (int, error) {
	table, err := s.tableFor(kind)
	if err != nil {
		return 0, err
	}

	scan := &dynamodb.ScanInput{
		TableName: aws.String(table),
		Select:    types.SelectCount,
	}
	if filter != nil {
		scan.FilterExpression = aws.String("#attr = :val")
		scan.ExpressionAttributeNames = map[string]string{"#attr": filter.Attr}
		scan.ExpressionAttributeValues = map[string]types.AttributeValue{
			":val": &types.AttributeValueMemberS{Value: filter.Equals},
		}
	}

	total := 0
	paginator := dynamodb.NewScanPaginator(s.client, scan)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		total += int(page.Count)
	}
	return total, nil
}
