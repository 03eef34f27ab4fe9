package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/jobrank/internal/jobs"
	"github.com/spigell/jobrank/internal/matching"
	"github.com/spigell/jobrank/internal/output"
	"github.com/spigell/jobrank/internal/ranking"
	"github.com/spigell/jobrank/internal/scoring"
)

const (
	PromptNext                = "Next page"
	PromptPrev                = "Previous page"
	PromptDetails             = "Show details"
	PromptReportByCompany     = "Report by company"
	PromptProviders           = "Report by provider"
	PromptDump                = "Dump results to file"
	PromptAppendToExcludeFile = "Append page to exclude file"
	PromptExit                = "Exit"
	PromptBack                = "back"

	defaultPageSize = 10
)

var errExit = errors.New("exit requested")

// selectAction and selectPosting are replaced in tests.
var (
	selectAction = func(items []string) (string, error) {
		prompt := promptui.Select{
			Label: "Proceed?",
			Items: items,
			Size:  len(items),
		}
		_, action, err := prompt.Run()
		return action, err
	}

	selectPosting = func(labels []string) (int, error) {
		prompt := promptui.Select{
			Label: "Choose a posting and press ENTER",
			Items: append(slices.Clone(labels), PromptBack),
		}
		index, _, err := prompt.Run()
		if err != nil {
			return -1, err
		}
		if index == len(labels) {
			return -1, nil
		}
		return index, nil
	}
)

// browser pages through ranked results interactively.
type browser struct {
	result      *matching.Result
	ranked      *ranking.Ranked
	page        int
	size        int
	excludeFile string
	out         io.Writer
	logger      *zap.Logger
}

func newBrowser(result *matching.Result, size int, excludeFile string, out io.Writer, logger *zap.Logger) *browser {
	if size < 1 {
		size = defaultPageSize
	}
	return &browser{
		result:      result,
		ranked:      result.Ranked,
		page:        1,
		size:        size,
		excludeFile: excludeFile,
		out:         out,
		logger:      logger,
	}
}

func (b *browser) run() error {
	for {
		if err := b.show(); err != nil {
			return err
		}

		action, err := selectAction(b.items())
		if err != nil {
			return err
		}

		if err := b.handle(action); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

func (b *browser) pages() int {
	return b.ranked.Pages(b.size)
}

func (b *browser) current() ([]scoring.MatchResult, error) {
	return b.ranked.Page(b.page, b.size)
}

func (b *browser) show() error {
	results, err := b.current()
	if err != nil {
		return err
	}

	semantic := "off"
	if b.result.SemanticUsed {
		semantic = "on"
	}
	fmt.Fprintf(b.out, "Page %d/%d, %d results, semantic scoring %s\n", b.page, b.pages(), b.ranked.Len(), semantic)

	return output.WriteResults(b.out, results, (b.page-1)*b.size)
}

func (b *browser) items() []string {
	items := []string{}
	if b.page < b.pages() {
		items = append(items, PromptNext)
	}
	if b.page > 1 {
		items = append(items, PromptPrev)
	}
	items = append(items, PromptDetails, PromptReportByCompany, PromptProviders, PromptDump)
	if b.excludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	return append(items, PromptExit)
}

func (b *browser) handle(action string) error {
	switch action {
	case PromptNext:
		if b.page < b.pages() {
			b.page++
		}
		return nil
	case PromptPrev:
		if b.page > 1 {
			b.page--
		}
		return nil
	case PromptDetails:
		return b.details()
	case PromptReportByCompany:
		return output.WriteJSON(b.out, b.postings().ReportByCompany())
	case PromptProviders:
		return output.WriteProviders(b.out, b.result.Report)
	case PromptDump:
		filename, err := output.DumpToTmpFile(output.Page{
			SearchID:     b.result.SearchID,
			Page:         1,
			Pages:        1,
			Total:        b.ranked.Len(),
			SemanticUsed: b.result.SemanticUsed,
			Results:      b.ranked.All(),
		})
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		b.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return b.appendPageToExcludeFile()
	case PromptExit:
		b.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (b *browser) details() error {
	results, err := b.current()
	if err != nil {
		return err
	}

	offset := (b.page - 1) * b.size
	labels := make([]string, 0, len(results))
	for i, r := range results {
		labels = append(labels, fmt.Sprintf("%d. %s / %s / %s", offset+i+1, r.Posting.Title, r.Posting.Company, output.Percent(r.FinalScore)))
	}

	index, err := selectPosting(labels)
	if err != nil || index < 0 {
		return err
	}

	return output.WriteDetails(b.out, results[index])
}

// appendPageToExcludeFile stores the postings of the current page in the
// exclude file and drops them from the browsed list.
func (b *browser) appendPageToExcludeFile() error {
	results, err := b.current()
	if err != nil {
		return err
	}

	page := make([]jobs.Posting, 0, len(results))
	for _, r := range results {
		page = append(page, r.Posting)
	}

	excluded, err := jobs.GetExcludedPostingsFromFile(b.excludeFile)
	if err != nil {
		return err
	}
	excluded.Append(jobs.NewPostings(page).ToExcluded())
	if err := excluded.ToFile(b.excludeFile); err != nil {
		return err
	}

	b.logger.Info("appended to exclude file",
		zap.String("filename", b.excludeFile),
		zap.Int("postings", len(page)),
	)

	drop := make(map[string]struct{}, len(page))
	for _, p := range page {
		drop[p.ID] = struct{}{}
	}
	kept := slices.DeleteFunc(b.ranked.All(), func(r scoring.MatchResult) bool {
		_, ok := drop[r.Posting.ID]
		return ok
	})
	b.ranked = ranking.New(kept, 0)

	if b.ranked.Len() == 0 {
		b.logger.Info("exiting", zap.String("reason", "no postings left"))
		return errExit
	}
	b.page = min(b.page, b.pages())

	return nil
}

func (b *browser) postings() *jobs.Postings {
	all := b.ranked.All()
	items := make([]jobs.Posting, 0, len(all))
	for _, r := range all {
		items = append(items, r.Posting)
	}
	return jobs.NewPostings(items)
}
