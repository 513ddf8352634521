package usecase

import "time"

// 返品期限の判定などで使う現在時刻
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock はUTCの現在時刻を返す
func SystemClock() Clock { return systemClock{} }
