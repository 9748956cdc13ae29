package schema

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// FetchResult is the outcome a background fetch task reports
type FetchResult int

const (
	FetchResultNoData FetchResult = iota
	FetchResultNewData
	FetchResultFailed
)

func (r FetchResult) String() string {
	switch r {
	case FetchResultNewData:
		return "new-data"
	case FetchResultFailed:
		return "failed"
	default:
		return "no-data"
	}
}

func (r FetchResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *FetchResult) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseFetchResult(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalBSONValue stores the result as its string form, the same shape JSON uses.
func (r FetchResult) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(r.String())
}

func (r *FetchResult) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	s, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("fetch result must be a bson string, got %s", t)
	}
	parsed, err := ParseFetchResult(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseFetchResult is the inverse of FetchResult.String
func ParseFetchResult(s string) (FetchResult, error) {
	switch s {
	case "no-data":
		return FetchResultNoData, nil
	case "new-data":
		return FetchResultNewData, nil
	case "failed":
		return FetchResultFailed, nil
	}
	return FetchResultNoData, fmt.Errorf("unknown fetch result %q", s)
}

// AggregateFetchResults folds the results of one execution request into a single outcome:
// new data wins over failure, failure wins over no data. Values that are not a
// FetchResult (or its string form) are ignored.
func AggregateFetchResults(results []interface{}) FetchResult {
	sawFailed := false
	for _, result := range results {
		var r FetchResult
		switch v := result.(type) {
		case FetchResult:
			r = v
		case string:
			parsed, err := ParseFetchResult(v)
			if err != nil {
				continue
			}
			r = parsed
		default:
			continue
		}
		if r == FetchResultNewData {
			return FetchResultNewData
		}
		if r == FetchResultFailed {
			sawFailed = true
		}
	}
	if sawFailed {
		return FetchResultFailed
	}
	return FetchResultNoData
}

// RequestRecord is the persisted outcome of a finished execution request
type RequestRecord struct {
	ID          string        `json:"id" bson:"_id"`
	Trigger     Trigger       `json:"trigger" bson:"trigger"`
	TaskIDs     []string      `json:"task_ids" bson:"task_ids"`
	Results     []interface{} `json:"results" bson:"results"`
	FetchResult string        `json:"fetch_result" bson:"fetch_result"`
	StartedAt   time.Time     `json:"started_at" bson:"started_at"`
	FinishedAt  time.Time     `json:"finished_at" bson:"finished_at"`
}
