package mailbox

import (
	"sort"
	"time"
)

const (
	mebibyte = 1024 * 1024

	// Size bucket bounds: small < 1 MiB <= medium <= 5 MiB < large.
	smallLimit  = 1 * mebibyte
	mediumLimit = 5 * mebibyte

	topSendersLimit = 10
)

// dateLayouts are the Date header forms counted in the hour histogram. Minutes and
// seconds may be one digit; the offset may be Z, +hhmm or +hh:mm.
var dateLayouts = []string{
	"Mon, 2 Jan 2006 15:4:5 Z0700",
	"Mon, 2 Jan 2006 15:4:5 Z07:00",
}

// SizeDistribution counts messages per size bucket.
type SizeDistribution struct {
	Small  int `json:"small"`
	Medium int `json:"medium"`
	Large  int `json:"large"`
}

// Report is the mailbox activity summary for one window. It is never cached.
type Report struct {
	TotalEmails           int              `json:"total_emails"`
	Senders               map[string]int   `json:"senders"`
	Subjects              map[string]int   `json:"subjects"`
	TimeDistribution      map[int]int      `json:"time_distribution"`
	EmailSizeDistribution SizeDistribution `json:"email_size_distribution"`
}

// SenderCount is one row of the top-senders ranking.
type SenderCount struct {
	Sender string `json:"sender"`
	Count  int    `json:"count"`
}

func newReport(total int) *Report {
	return &Report{
		TotalEmails:      total,
		Senders:          make(map[string]int),
		Subjects:         make(map[string]int),
		TimeDistribution: make(map[int]int),
	}
}

func (r *Report) add(meta MessageMetadata) {
	if sender, _ := meta.Header("From"); sender != "" {
		r.Senders[sender]++
	}
	if subject, _ := meta.Header("Subject"); subject != "" {
		r.Subjects[subject]++
	}
	if date, _ := meta.Header("Date"); date != "" {
		if hour, ok := parseHour(date); ok {
			r.TimeDistribution[hour]++
		}
	}

	switch bucketOf(meta.SizeEstimate) {
	case bucketSmall:
		r.EmailSizeDistribution.Small++
	case bucketMedium:
		r.EmailSizeDistribution.Medium++
	default:
		r.EmailSizeDistribution.Large++
	}
}

// TopSenders ranks senders by count descending, ties by sender ascending, capped at n.
func (r *Report) TopSenders(n int) []SenderCount {
	out := make([]SenderCount, 0, len(r.Senders))
	for sender, count := range r.Senders {
		out = append(out, SenderCount{Sender: sender, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Sender < out[j].Sender
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

type sizeBucket int

const (
	bucketSmall sizeBucket = iota
	bucketMedium
	bucketLarge
)

func bucketOf(size int64) sizeBucket {
	switch {
	case size < smallLimit:
		return bucketSmall
	case size <= mediumLimit:
		return bucketMedium
	default:
		return bucketLarge
	}
}

// parseHour returns the hour of day in the header's own offset.
func parseHour(date string) (int, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Hour(), true
		}
	}
	return 0, false
}
