package sources

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/jobrank/internal/extract"
	"github.com/spigell/jobrank/internal/jobs"
	"github.com/spigell/jobrank/internal/metrics"
)

// decodeItems converts loosely typed payload items one by one. Items that do
// not fit T are skipped and counted instead of failing the whole batch.
func decodeItems[T any](c *client, raw []map[string]any) []T {
	items := make([]T, 0, len(raw))
	for i, entry := range raw {
		var item T
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &item,
		})
		if err != nil {
			c.logger.Error("creating decoder", zap.Error(err))
			return items
		}
		if err := decoder.Decode(entry); err != nil {
			metrics.MalformedItemsTotal.WithLabelValues(c.name).Inc()
			c.logger.Debug("skipping malformed item", zap.Int("index", i), zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items
}

// finalize applies the normalization every provider shares: clean
// description, skills from text when the origin lists none.
func finalize(vocab *extract.Vocabulary, p jobs.Posting) jobs.Posting {
	p.Description = extract.CleanDescription(p.Description)
	if len(p.RequiredSkills) == 0 {
		p.RequiredSkills = vocab.Extract(p.Title + " " + p.Description)
	}
	return jobs.Normalize(p)
}

func qualifiedID(source string, id any) string {
	s := fmt.Sprint(id)
	if s == "" || s == "<nil>" {
		return ""
	}
	return source + "_" + s
}

// hashID derives a stable id from a URL for sources without native ids.
func hashID(source, link string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(link))
	return fmt.Sprintf("%s_%08x", source, h.Sum32())
}

func unixDate(sec int64) string {
	if sec <= 0 {
		return ""
	}
	return time.Unix(sec, 0).UTC().Format(time.DateOnly)
}

// isoDate keeps the date part of an RFC 3339 timestamp.
func isoDate(s string) string {
	if len(s) >= len(time.DateOnly) {
		if _, err := time.Parse(time.DateOnly, s[:len(time.DateOnly)]); err == nil {
			return s[:len(time.DateOnly)]
		}
	}
	return s
}
