package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Usage describes the accepted commands.
const Usage = `usage:
  weather-cli [flags] current  <city>
  weather-cli [flags] forecast <city>
  weather-cli [flags] map      <city>
  weather-cli [flags] history`

// ErrUsage is returned for an unknown or missing command.
var ErrUsage = errors.New("invalid command")

// Runner runs one orchestrated query.
type Runner interface {
	Run(ctx context.Context, action weather.SearchType, input string) (weather.Result, error)
}

// HistorySource loads the caller's search history.
type HistorySource interface {
	History(ctx context.Context) ([]weather.SearchEvent, error)
}

var actions = map[string]weather.SearchType{
	"current":  weather.SearchCurrent,
	"forecast": weather.SearchForecast,
	"map":      weather.SearchMap,
}

// Run dispatches args to the matching action, writing rendered output to stdout
// and progress to stderr. It returns the process exit code.
func Run(ctx context.Context, args []string, runner Runner, history HistorySource, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, Usage)
		return 2
	}

	cmd := strings.ToLower(args[0])
	if cmd == "history" {
		events, err := history.History(ctx)
		if err != nil {
			fmt.Fprintln(stdout, weather.RenderHistoryError(err))
			return 1
		}
		fmt.Fprintln(stdout, weather.RenderHistory(events))
		return 0
	}

	action, ok := actions[cmd]
	if !ok {
		fmt.Fprintf(stderr, "%v: %q\n%s\n", ErrUsage, args[0], Usage)
		return 2
	}

	city := strings.Join(args[1:], " ")
	if strings.TrimSpace(city) != "" {
		fmt.Fprintln(stderr, weather.RenderSearching(strings.TrimSpace(city)))
	}

	res, err := runner.Run(ctx, action, city)
	if err != nil {
		fmt.Fprintln(stdout, weather.RenderError(err))
		return 1
	}
	fmt.Fprintln(stdout, res.HTML)
	return 0
}
