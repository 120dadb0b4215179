package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
	opensearch "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// Match はインデックスが返す1件の候補です
type Match struct {
	BusinessID string
	Score      float64
}

// SuggestionIndex はキュイジーヌ一致でスコア付き候補を返すインデックスのインターフェースです
type SuggestionIndex interface {
	MatchCuisine(ctx context.Context, cuisine string) ([]Match, error)
}

// OpenSearchSuggestionIndex はSuggestionIndexのOpenSearch実装です
type OpenSearchSuggestionIndex struct {
	client *opensearch.Client
	index  string
}

// NewOpenSearchSuggestionIndex は新しいOpenSearchSuggestionIndexを作成します
func NewOpenSearchSuggestionIndex(client *opensearch.Client, index string) *OpenSearchSuggestionIndex {
	return &OpenSearchSuggestionIndex{
		client: client,
		index:  index,
	}
}

// searchResponse はインデックス応答のうち利用するフィールドのみを写し取ります
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source struct {
				BusinessID string  `json:"BusinessId"`
				Score      float64 `json:"score"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// MatchCuisine はキュイジーヌのmatchクエリで候補を検索します
func (s *OpenSearchSuggestionIndex) MatchCuisine(ctx context.Context, cuisine string) ([]Match, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "SuggestionIndex.MatchCuisine")
	defer seg.Close(nil)

	query := map[string]any{
		"query": map[string]any{
			"match": map[string]any{
				"Cuisine": cuisine,
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("failed to search index %s: %w", s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		err := fmt.Errorf("search index %s returned status %s", s.index, res.Status())
		seg.Close(err)
		return nil, err
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	matches := make([]Match, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		matches = append(matches, Match{
			BusinessID: hit.Source.BusinessID,
			Score:      hit.Source.Score,
		})
	}

	return matches, nil
}
