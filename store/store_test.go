package store_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/stevedore/internal/cursor"
	"github.com/jacentio/stevedore/store"
)

// mockDynamo is a scripted DynamoDB client: each call records its input
// and pops the next canned output.
type mockDynamo struct {
	getOutput *dynamodb.GetItemOutput
	getErr    error
	getInput  *dynamodb.GetItemInput

	putInput *dynamodb.PutItemInput
	putErr   error

	deleteInput *dynamodb.DeleteItemInput

	updateOutput *dynamodb.UpdateItemOutput
	updateInput  *dynamodb.UpdateItemInput

	batchOutputs []*dynamodb.BatchGetItemOutput
	batchInputs  []*dynamodb.BatchGetItemInput

	scanOutputs []*dynamodb.ScanOutput
	scanInputs  []*dynamodb.ScanInput
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.getInput = params
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.getOutput == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return m.getOutput, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInput = params
	if m.putErr != nil {
		return nil, m.putErr
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.deleteInput = params
	return &dynamodb.DeleteItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.updateInput = params
	if m.updateOutput == nil {
		return &dynamodb.UpdateItemOutput{}, nil
	}
	return m.updateOutput, nil
}

func (m *mockDynamo) BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	m.batchInputs = append(m.batchInputs, params)
	if len(m.batchOutputs) == 0 {
		return &dynamodb.BatchGetItemOutput{}, nil
	}
	out := m.batchOutputs[0]
	m.batchOutputs = m.batchOutputs[1:]
	return out, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	m.scanInputs = append(m.scanInputs, params)
	if len(m.scanOutputs) == 0 {
		return &dynamodb.ScanOutput{}, nil
	}
	out := m.scanOutputs[0]
	m.scanOutputs = m.scanOutputs[1:]
	return out, nil
}

func numItem(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
	}
}

func newStore(client *mockDynamo) *store.Store {
	return store.New(client, store.DefaultConfig())
}

func TestGet(t *testing.T) {
	client := &mockDynamo{
		getOutput: &dynamodb.GetItemOutput{Item: numItem(7)},
	}
	s := newStore(client)

	rec, err := s.Get(context.Background(), "vessel", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id, ok := rec.ID(); !ok || id != 7 {
		t.Errorf("expected record id 7, got %v (%v)", id, ok)
	}
	if got := aws.ToString(client.getInput.TableName); got != "vessels" {
		t.Errorf("expected table vessels, got %q", got)
	}
	key, ok := client.getInput.Key["id"].(*types.AttributeValueMemberN)
	if !ok || key.Value != "7" {
		t.Errorf("expected numeric key 7, got %v", client.getInput.Key)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := newStore(&mockDynamo{getOutput: &dynamodb.GetItemOutput{}})

	_, err := s.Get(context.Background(), "vessel", 7)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_UnknownKind(t *testing.T) {
	s := newStore(&mockDynamo{})

	_, err := s.Get(context.Background(), "submarine", 7)
	if !errors.Is(err, store.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestPut_ForcesIDAttribute(t *testing.T) {
	client := &mockDynamo{}
	s := newStore(client)

	rec := store.Record{
		"name": &types.AttributeValueMemberS{Value: "Orca"},
	}
	if err := s.Put(context.Background(), "vessel", 7, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item := client.putInput.Item
	id, ok := item["id"].(*types.AttributeValueMemberN)
	if !ok || id.Value != "7" {
		t.Errorf("expected the key id written into the item, got %v", item["id"])
	}
	if _, ok := rec["id"]; ok {
		t.Error("the caller's record must not be mutated")
	}
}

func TestDelete(t *testing.T) {
	client := &mockDynamo{}
	s := newStore(client)

	if err := s.Delete(context.Background(), "cargo_item", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := aws.ToString(client.deleteInput.TableName); got != "cargo_items" {
		t.Errorf("expected table cargo_items, got %q", got)
	}
}

func TestAllocateID(t *testing.T) {
	client := &mockDynamo{
		updateOutput: &dynamodb.UpdateItemOutput{
			Attributes: map[string]types.AttributeValue{
				"seq": &types.AttributeValueMemberN{Value: "42"},
			},
		},
	}
	s := newStore(client)

	id, err := s.AllocateID(context.Background(), "vessel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Errorf("expected id 42, got %d", id)
	}

	if got := aws.ToString(client.updateInput.TableName); got != "stevedore_counters" {
		t.Errorf("expected counter table, got %q", got)
	}
	kind, ok := client.updateInput.Key["kind"].(*types.AttributeValueMemberS)
	if !ok || kind.Value != "vessel" {
		t.Errorf("expected counter keyed by kind, got %v", client.updateInput.Key)
	}
	if got := aws.ToString(client.updateInput.UpdateExpression); got != "ADD #seq :one" {
		t.Errorf("expected atomic increment, got %q", got)
	}
}

func TestBatchGet_PreservesOrderAndRetries(t *testing.T) {
	client := &mockDynamo{
		batchOutputs: []*dynamodb.BatchGetItemOutput{
			{
				Responses: map[string][]map[string]types.AttributeValue{
					"cargo_items": {numItem(1), numItem(3)},
				},
				UnprocessedKeys: map[string]types.KeysAndAttributes{
					"cargo_items": {Keys: []map[string]types.AttributeValue{numItem(2)}},
				},
			},
			{
				Responses: map[string][]map[string]types.AttributeValue{
					"cargo_items": {numItem(2)},
				},
			},
		},
	}
	s := newStore(client)

	records, err := s.BatchGet(context.Background(), "cargo_item", []int64{3, 1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.batchInputs) != 2 {
		t.Errorf("expected the unprocessed keys retried, got %d calls", len(client.batchInputs))
	}

	var got []int64
	for _, rec := range records {
		id, _ := rec.ID()
		got = append(got, id)
	}
	want := []int64{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected input order preserved: want %v, got %v", want, got)
		}
	}
}

func TestBatchGet_SkipsMissing(t *testing.T) {
	client := &mockDynamo{
		batchOutputs: []*dynamodb.BatchGetItemOutput{
			{
				Responses: map[string][]map[string]types.AttributeValue{
					"cargo_items": {numItem(3)},
				},
			},
		},
	}
	s := newStore(client)

	records, err := s.BatchGet(context.Background(), "cargo_item", []int64{3, 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected the missing id skipped, got %d records", len(records))
	}
	if id, _ := records[0].ID(); id != 3 {
		t.Errorf("expected record 3, got %d", id)
	}
}

func TestQueryPage_LookAhead(t *testing.T) {
	client := &mockDynamo{
		scanOutputs: []*dynamodb.ScanOutput{
			{Items: []map[string]types.AttributeValue{numItem(1), numItem(2), numItem(3)}},
		},
	}
	s := newStore(client)

	page, err := s.QueryPage(context.Background(), store.QueryInput{Kind: "vessel", Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.NextCursor == "" {
		t.Fatal("expected a continuation cursor")
	}

	kind, id, err := cursor.Decode(page.NextCursor)
	if err != nil {
		t.Fatalf("cursor must decode: %v", err)
	}
	if kind != "vessel" || id != 2 {
		t.Errorf("cursor must mark the last returned record, got %s/%d", kind, id)
	}
}

func TestQueryPage_NoFurtherResults(t *testing.T) {
	client := &mockDynamo{
		scanOutputs: []*dynamodb.ScanOutput{
			{Items: []map[string]types.AttributeValue{numItem(1), numItem(2)}},
		},
	}
	s := newStore(client)

	page, err := s.QueryPage(context.Background(), store.QueryInput{Kind: "vessel", Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.NextCursor != "" {
		t.Errorf("expected no cursor when the collection is exhausted, got %q", page.NextCursor)
	}
}

func TestQueryPage_CursorResumesScan(t *testing.T) {
	client := &mockDynamo{}
	s := newStore(client)

	_, err := s.QueryPage(context.Background(), store.QueryInput{
		Kind:   "vessel",
		Limit:  5,
		Cursor: cursor.Encode("vessel", 5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start, ok := client.scanInputs[0].ExclusiveStartKey["id"].(*types.AttributeValueMemberN)
	if !ok || start.Value != "5" {
		t.Errorf("expected scan resumed after id 5, got %v", client.scanInputs[0].ExclusiveStartKey)
	}
}

func TestQueryPage_RejectsForeignCursor(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{"garbage", "bogus"},
		{"other kind", cursor.Encode("cargo_item", 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(&mockDynamo{})
			_, err := s.QueryPage(context.Background(), store.QueryInput{
				Kind:   "vessel",
				Limit:  5,
				Cursor: tt.cursor,
			})
			if !errors.Is(err, store.ErrBadCursor) {
				t.Errorf("expected ErrBadCursor, got %v", err)
			}
		})
	}
}

func TestQueryPage_Filter(t *testing.T) {
	client := &mockDynamo{}
	s := newStore(client)

	_, err := s.QueryPage(context.Background(), store.QueryInput{
		Kind:   "vessel",
		Limit:  5,
		Filter: &store.Condition{Attr: "owner", Equals: "auth0|alice"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := client.scanInputs[0]
	if got := aws.ToString(in.FilterExpression); got != "#attr = :val" {
		t.Errorf("expected filter expression, got %q", got)
	}
	if in.ExpressionAttributeNames["#attr"] != "owner" {
		t.Errorf("expected owner attribute, got %v", in.ExpressionAttributeNames)
	}
	val, ok := in.ExpressionAttributeValues[":val"].(*types.AttributeValueMemberS)
	if !ok || val.Value != "auth0|alice" {
		t.Errorf("expected filter value, got %v", in.ExpressionAttributeValues)
	}
}

func TestCount_SumsAllScanPages(t *testing.T) {
	client := &mockDynamo{
		scanOutputs: []*dynamodb.ScanOutput{
			{Count: 3, LastEvaluatedKey: numItem(3)},
			{Count: 4},
		},
	}
	s := newStore(client)

	total, err := s.Count(context.Background(), "vessel", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 7 {
		t.Errorf("expected 7, got %d", total)
	}
	if client.scanInputs[0].Select != types.SelectCount {
		t.Errorf("expected a count-only scan, got %v", client.scanInputs[0].Select)
	}
}
