package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/isdelr/user-directory-be/internal/dashboard"
	"github.com/isdelr/user-directory-be/internal/logger"
	"github.com/isdelr/user-directory-be/internal/models"
	"github.com/rs/zerolog/log"
)

// terminalRenderer draws the dashboard to stdout.
type terminalRenderer struct{}

func (terminalRenderer) RenderTable(users []models.User) {
	if len(users) == 0 {
		fmt.Println("No users found. Get started by adding your first user.")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PHOTO\tNAME\tEMAIL\tMOBILE\tID")
	for _, u := range users {
		photo := u.Photo
		if photo == "" {
			photo = "N/A"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", photo, u.Name, u.Email, u.Mobile, u.ID)
	}
	tw.Flush()
}

func (terminalRenderer) RenderStats(stats dashboard.Stats) {
	storageMB := float64(stats.StorageBytes) / (1024 * 1024)
	fmt.Printf("Total: %d  New today: %d  Active: %d  Storage: %.2f MB\n",
		stats.Total, stats.NewToday, stats.Active, storageMB)
}

func (terminalRenderer) ShowMessage(kind, text string) {
	fmt.Printf("[%s] %s\n", kind, text)
}

// defaultBaseURL picks the service by host name: a local host name points
// at a local service, anything else at the deployed one.
func defaultBaseURL() string {
	if url := os.Getenv("API_BASE_URL"); url != "" {
		return url
	}
	host, err := os.Hostname()
	if err == nil && host != "localhost" && !strings.HasSuffix(host, ".local") {
		if deployed := os.Getenv("DEPLOYED_API_URL"); deployed != "" {
			return deployed
		}
	}
	return "http://localhost:8080"
}

func main() {
	logger.Init()

	baseURL := flag.String("base-url", defaultBaseURL(), "Directory Service base URL")
	flag.Parse()

	client := dashboard.NewClient(*baseURL)
	d := dashboard.New(client, terminalRenderer{})
	ctx := context.Background()

	scanner := bufio.NewScanner(os.Stdin)
	d.SetFormProvider(func(u models.User) (dashboard.Form, bool) {
		fmt.Printf("Editing %s <%s>\n", u.Name, u.Email)
		return promptForm(scanner), true
	})

	if err := d.Load(ctx); err != nil {
		log.Error().Err(err).Msg("Initial load failed")
	}

	fmt.Println(`Commands: list | search <term> | filter all|recent | add | edit <id> | delete <id> | export <file> | refresh | quit`)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "quit", "exit":
			return
		case "list":
			if _, err := d.Filter("all"); err != nil {
				fmt.Println(err)
			}
		case "search":
			d.Search(strings.Join(parts[1:], " "))
		case "filter":
			if len(parts) < 2 {
				fmt.Println("usage: filter all|recent")
				continue
			}
			if _, err := d.Filter(parts[1]); err != nil {
				fmt.Println(err)
			}
		case "add":
			form := promptForm(scanner)
			if _, err := client.Create(ctx, form); err != nil {
				fmt.Println("create failed:", err)
				continue
			}
			fmt.Println("user created")
			if err := d.Load(ctx); err != nil {
				fmt.Println(err)
			}
		case "edit":
			if len(parts) < 2 {
				fmt.Println("usage: edit <id>")
				continue
			}
			res := d.Dispatch(ctx, "edit", parts[1])
			fmt.Println(res.Message)
		case "delete":
			if len(parts) < 2 {
				fmt.Println("usage: delete <id>")
				continue
			}
			res := d.Delete(ctx, parts[1], func() bool {
				fmt.Print("Are you sure you want to delete this user? [y/N] ")
				if !scanner.Scan() {
					return false
				}
				return strings.EqualFold(strings.TrimSpace(scanner.Text()), "y")
			})
			fmt.Println(res.Message)
		case "export":
			if len(parts) < 2 {
				fmt.Println("usage: export <file>")
				continue
			}
			if err := exportToFile(d, parts[1]); err != nil {
				fmt.Println("export failed:", err)
			} else {
				fmt.Println("exported to", parts[1])
			}
		case "refresh":
			res := d.Dispatch(ctx, "refresh", "")
			fmt.Println(res.Message)
		default:
			fmt.Println("unknown command:", parts[0])
		}
	}
}

// promptForm reads the user fields interactively. Blank photo skips upload.
func promptForm(scanner *bufio.Scanner) dashboard.Form {
	read := func(label string) string {
		fmt.Print(label + ": ")
		if !scanner.Scan() {
			return ""
		}
		return strings.TrimSpace(scanner.Text())
	}
	return dashboard.Form{
		Name:      read("name"),
		DOB:       read("dob (YYYY-MM-DD)"),
		Email:     read("email"),
		Mobile:    read("mobile"),
		PhotoPath: read("photo file (optional)"),
	}
}

func exportToFile(d *dashboard.Dashboard, path string) error {
	users := d.State().Users()
	if len(users) == 0 {
		return fmt.Errorf("no users to export")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return dashboard.ExportCSV(f, users)
}
