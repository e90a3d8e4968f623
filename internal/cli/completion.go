package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"wsup/internal/app"
)

// ensureApp lazily initializes appInstance for shell completion.
// Cobra may invoke ValidArgsFunction without running PersistentPreRunE.
func ensureApp() error {
	if appInstance != nil {
		return nil
	}
	var err error
	appInstance, err = app.New(app.Options{})
	return err
}

// completeEndpointURLs provides shell completion for endpoint URLs from
// saved connections and recent history.
func completeEndpointURLs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	if err := ensureApp(); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	seen := make(map[string]bool)
	var completions []string
	add := func(url string) {
		if seen[url] {
			return
		}
		if strings.HasPrefix(strings.ToLower(url), strings.ToLower(toComplete)) {
			seen[url] = true
			completions = append(completions, url)
		}
	}

	for _, c := range appInstance.Connections.Connections() {
		add(c.URL)
	}
	for _, item := range appInstance.Library.History() {
		add(item.URL)
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}
