package usecase

import "time"

const maxListLimit = 100

// 一覧APIの共通レスポンス
type ListPage[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func newListPage[T any](items []T, total int64, page, limit int) ListPage[T] {
	if items == nil {
		items = []T{}
	}
	return ListPage[T]{Items: items, Total: total, Page: page, Limit: limit}
}

func checkPaging(page, limit, maxLimit int) error {
	if page < 1 {
		return invalidFilter("page must be >= 1")
	}
	if limit < 1 || limit > maxLimit {
		return invalidFilter("limit must be between 1 and %d", maxLimit)
	}
	return nil
}

// 期間をUTCにそろえて返す。sqliteは日時を文字列で比べるのでオフセット付きのままだと範囲がずれる。
func utcRange(from, to *time.Time) (*time.Time, *time.Time, error) {
	from, to = utcPtr(from), utcPtr(to)
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, invalidFilter("from must be <= to")
	}
	return from, to, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
