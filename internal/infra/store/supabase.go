package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"wabalerts/internal/domain/notification"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

const subscribersTable = "subscribers"

var _ notification.SubscriberStore = (*SupabaseStore)(nil)

// SupabaseStore reads subscriber groups through the Supabase Go SDK.
type SupabaseStore struct {
	client *supa.Client
}

// NewSupabaseStore creates a new Supabase-backed subscriber store.
func NewSupabaseStore(supabaseURL, serviceKey string) (*SupabaseStore, error) {
	client, err := supa.NewClient(supabaseURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	return &SupabaseStore{client: client}, nil
}

// subscriberRow mirrors a row of the subscribers table.
type subscriberRow struct {
	ID      int64  `json:"id"`
	Date    string `json:"date,omitempty"`
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	GroupID int64  `json:"group_id"`
}

// pageSize matches PostgREST's default max-rows; a larger request would be
// truncated by the server.
const pageSize = 1000

// pageFetcher returns the raw rows in [from, to] and the exact row total.
type pageFetcher func(from, to int) ([]byte, int64, error)

// GroupMembers returns every subscriber of a group ordered by id. Large groups
// are read page by page so none are lost to the server's row cap.
func (s *SupabaseStore) GroupMembers(ctx context.Context, groupID int64) ([]notification.GroupMember, error) {
	group := strconv.FormatInt(groupID, 10)
	members, err := fetchAll(ctx, func(from, to int) ([]byte, int64, error) {
		return s.client.From(subscribersTable).
			Select("id,name,mobile,group_id", "exact", false).
			Eq("group_id", group).
			Order("id", &postgrest.OrderOpts{Ascending: true}).
			Range(from, to, "").
			Execute()
	})
	if err != nil {
		return nil, fmt.Errorf("querying group %d members: %w", groupID, err)
	}
	return members, nil
}

// fetchAll reads pages until the reported total is reached. Without a total
// it stops at the first short page.
func fetchAll(ctx context.Context, fetch pageFetcher) ([]notification.GroupMember, error) {
	members := []notification.GroupMember{}
	for from := 0; ; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, total, err := fetch(from, from+pageSize-1)
		if err != nil {
			return nil, err
		}
		page, err := decodeMembers(data)
		if err != nil {
			return nil, err
		}
		members = append(members, page...)
		from += len(page)

		switch {
		case len(page) == 0:
			return members, nil
		case total > 0 && int64(from) >= total:
			return members, nil
		case total <= 0 && len(page) < pageSize:
			return members, nil
		}
	}
}

func decodeMembers(data []byte) ([]notification.GroupMember, error) {
	var rows []subscriberRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing subscribers response: %w", err)
	}

	members := make([]notification.GroupMember, 0, len(rows))
	for _, r := range rows {
		members = append(members, notification.GroupMember{Name: r.Name, Mobile: r.Mobile})
	}
	return members, nil
}
