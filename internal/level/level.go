// Package level converts accumulated rest time into a rest level.
//
// Level 1 costs 30 seconds and every following level costs twice the
// previous one, so the cumulative thresholds are 30, 90, 210, 450, ...
package level

import (
	"fmt"
	"math"
)

// BaseCost is the number of seconds needed to complete level 1.
const BaseCost int64 = 30

// Calculate returns the level reached with total seconds of rest and the
// seconds consumed by all completed levels (the floor of the current level).
// Negative totals are treated as zero.
func Calculate(total int64) (level int, accumulated int64) {
	level = 1
	cost := BaseCost
	for total-accumulated >= cost {
		accumulated += cost
		level++
		if cost > math.MaxInt64/2 {
			break
		}
		cost *= 2
	}
	return level, accumulated
}

// NextLevelRequired returns the seconds needed to complete level,
// 30 * 2^(level-1). Levels below 1 are treated as level 1.
func NextLevelRequired(level int) int64 {
	if level < 1 {
		level = 1
	}
	if level-1 >= 62 {
		return math.MaxInt64
	}
	return BaseCost << uint(level-1)
}

// Remaining returns the seconds left until the next level.
func Remaining(total int64) int64 {
	lvl, accumulated := Calculate(total)
	return NextLevelRequired(lvl) - (total - accumulated)
}

// Progress is the view model shown in the rest popup.
type Progress struct {
	Level     int
	Total     int64
	IntoLevel int64 // seconds earned inside the current level
	Required  int64 // seconds the current level costs
	Remaining int64
}

// Fraction returns IntoLevel/Required in [0,1].
func (p Progress) Fraction() float64 {
	if p.Required <= 0 {
		return 0
	}
	f := float64(p.IntoLevel) / float64(p.Required)
	if f > 1 {
		return 1
	}
	return f
}

// ProgressFor computes the progress view for total seconds of rest.
func ProgressFor(total int64) Progress {
	if total < 0 {
		total = 0
	}
	lvl, accumulated := Calculate(total)
	required := NextLevelRequired(lvl)
	into := total - accumulated
	return Progress{
		Level:     lvl,
		Total:     total,
		IntoLevel: into,
		Required:  required,
		Remaining: required - into,
	}
}

// FormatDuration renders seconds as "N분 M초".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d분 %d초", seconds/60, seconds%60)
}

var messages = map[int]string{
	1:  "쉼이랑 무엇인가? 느껴지시나요?",
	2:  "오오! 이제 진정한 릴렉스를 맛보실듯",
	3:  "지금까지 레벨중에 가장 높은거 같아요!!",
	4:  "제대로 휴식을 누릴줄 아시는 군요!",
	5:  "이제 당신의 몸과 마음이 소생하고 있습니다!",
	6:  "회사업무 능률이 1+ 되었습니다!",
	7:  "생기있는 당신의 모습! 빛이 납니다!",
	8:  "쉬는것도 쉽지 않군. 좀더 힘을 내어 쉬어보자!",
	9:  "이제 이정도면 쉼이 몸에 익었다!",
	10: "최고 만렙에 도달하셨네요! 개발자에게 이 사실을 알리세요!",
}

// Message returns the celebration text for reaching level.
func Message(level int) string {
	if m, ok := messages[level]; ok {
		return m
	}
	return fmt.Sprintf("레벨 %d 달성! 계속해서 휴식을 즐기세요!", level)
}

// Celebration describes the firework animation for a level-up popup.
type Celebration struct {
	Particles int     // particles per burst
	MaxSize   float32 // largest particle radius
	SpawnRate float64 // chance of a new burst per animation frame
}

// Enabled reports whether any fireworks are shown.
func (c Celebration) Enabled() bool {
	return c.Particles > 0
}

// CelebrationIntensity grows the fireworks with the level. Levels below 3
// get none.
func CelebrationIntensity(level int) Celebration {
	switch {
	case level < 3:
		return Celebration{}
	case level == 3:
		return Celebration{Particles: 8, MaxSize: 3, SpawnRate: 0.15}
	case level <= 5:
		return Celebration{Particles: 12, MaxSize: 4, SpawnRate: 0.25}
	case level <= 7:
		return Celebration{Particles: 18, MaxSize: 5, SpawnRate: 0.35}
	case level <= 9:
		return Celebration{Particles: 25, MaxSize: 6, SpawnRate: 0.45}
	default:
		return Celebration{Particles: 35, MaxSize: 7, SpawnRate: 0.60}
	}
}
