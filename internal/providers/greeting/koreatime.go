package greeting

import (
	"context"
	"fmt"
	"time"

	mcp "greeting/internal/mcp"
)

// KST is Korea Standard Time. Korea observes no daylight saving.
var KST = time.FixedZone("KST", 9*60*60)

var koreanWeekdays = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

func koreaTimeTool(now func() time.Time) mcp.Descriptor {
	return mcp.Descriptor{
		Kind:        mcp.KindTool,
		Name:        "korea-time",
		Description: "Reports the current time in Korea (KST).",
		Schema: mcp.Schema(
			mcp.EnumParam("format", "Output format (default: full)", "full", "simple", "date-only", "time-only").
				WithDefault("full"),
		),
		Handler: func(_ context.Context, args mcp.Args) (mcp.Result, error) {
			return mcp.Text(FormatKoreaTime(now(), args.String("format"))), nil
		},
	}
}

// FormatKoreaTime renders t in KST. Unknown formats fall back to full.
func FormatKoreaTime(t time.Time, format string) string {
	k := t.In(KST)
	hour12, ampm := k.Hour()%12, "오전"
	if hour12 == 0 {
		hour12 = 12
	}
	if k.Hour() >= 12 {
		ampm = "오후"
	}
	date := fmt.Sprintf("%d년 %d월 %d일 %s", k.Year(), int(k.Month()), k.Day(), koreanWeekdays[k.Weekday()])
	clock := fmt.Sprintf("%s %d:%02d:%02d", ampm, hour12, k.Minute(), k.Second())

	switch format {
	case "simple":
		return fmt.Sprintf("%d/%d %02d:%02d", int(k.Month()), k.Day(), k.Hour(), k.Minute())
	case "date-only":
		return date
	case "time-only":
		return clock
	default:
		return date + " " + clock
	}
}
