/*
heatmap.go - Daily completion heatmap

PURPOSE:
  Reduces a user's completed logs to a map from calendar-day string to
  the number of habits completed that day. The upsert invariant means
  one log per (habit, date), so the count per date IS the number of
  habits completed on it; no explicit deduplication is needed.

  Days with zero completions are absent from the map. A consumer
  enumerating a fixed window treats missing keys as zero. No smoothing,
  no gap-filling, no timezone conversion: the date string is an opaque
  key.
*/
package habit

import "context"

// BuildHeatmap reduces completed logs to date -> completion count.
// Records not marked completed are ignored.
func BuildHeatmap(logs []Log) map[string]int {
	heatmap := make(map[string]int)
	for _, l := range logs {
		if l.Completed {
			heatmap[l.Date.String()]++
		}
	}
	return heatmap
}

// HeatmapForUser loads a user's completed logs and reduces them.
// A store failure propagates; it is never folded into an empty map.
func HeatmapForUser(ctx context.Context, s Store, userID string) (map[string]int, error) {
	logs, err := s.ListCompletedLogs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildHeatmap(logs), nil
}
