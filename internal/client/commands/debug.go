package commands

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"chess/internal/client/display"
)

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check server health",
		Usage:       "health",
		Handler:     healthHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Set API base URL",
		Usage:       "url [apiUrl]",
		Handler:     urlHandler,
	})

	r.Register(&Command{
		Name:        "raw",
		ShortName:   ":",
		Description: "Send raw API request",
		Usage:       "raw <method> <path> [json-body]",
		Handler:     rawRequestHandler,
	})

	r.Register(&Command{
		Name:        "clear",
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "clear",
		Handler:     clearHandler,
	})
}

func healthHandler(r *Registry, args []string) error {
	resp, err := r.session.Client.Health()
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "%sServer Health:%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(r.out, "  Status:   %s\n", resp.Status)
	t := time.Unix(resp.Time, 0)
	fmt.Fprintf(r.out, "  Time:     %s\n", t.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.out, "  Storage:  %s\n", resp.Storage)
	fmt.Fprintf(r.out, "  Sessions: %d\n", resp.Sessions)
	return nil
}

func urlHandler(r *Registry, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Current API URL: %s\n", r.session.APIBaseURL)
		return nil
	}

	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}

	r.session.APIBaseURL = url
	r.session.Client.SetBaseURL(url)

	fmt.Fprintf(r.out, "%sAPI URL set to: %s%s\n", display.Cyan, url, display.Reset)
	return nil
}

func rawRequestHandler(r *Registry, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: raw <method> <path> [json-body]")
	}

	method := strings.ToUpper(args[0])
	path := args[1]

	body := ""
	if len(args) > 2 {
		body = strings.Join(args[2:], " ")
	}

	return r.session.Client.RawRequest(method, path, body)
}

func clearHandler(r *Registry, args []string) error {
	cmd := exec.Command("clear")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}
