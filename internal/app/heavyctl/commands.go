package heavyctl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/go-playground/validator"
	"github.com/spf13/cobra"

	"github.com/MindThoth/HeavyD-sub001/internal/gas"
	"github.com/MindThoth/HeavyD-sub001/internal/pricing"
)

// ErrNotLoggedIn возвращается командами, которым нужна сессия.
var ErrNotLoggedIn = errors.New("not logged in, run `heavyctl login` first")

// NewRootCommand собирает дерево команд.
func NewRootCommand(opts Options) *cobra.Command {
	var app *App
	return buildRoot(opts, &app, true)
}

// buildRoot собирает дерево команд над общим *App. App создаётся при первом
// запуске команды и дальше переиспользуется, поэтому команды внутри shell
// делят сессию и кеш прайса.
func buildRoot(opts Options, app **App, withShell bool) *cobra.Command {
	root := &cobra.Command{
		Use:           "heavyctl",
		Short:         "Command-line client for the HeavyD dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if *app == nil {
				if opts.Out == nil {
					opts.Out = cmd.OutOrStdout()
				}
				*app = New(opts)
			}
			if cmd.Annotations["session"] != "resume" {
				return nil
			}
			_, err := (*app).Resume(cmd.Context())
			return err
		},
	}

	root.AddCommand(
		loginCmd(app),
		logoutCmd(app),
		whoamiCmd(app),
		clientsCmd(app),
		pricesCmd(app),
		quoteCmd(app),
		receiptsCmd(app),
	)
	if withShell {
		root.AddCommand(shellCmd(opts, app))
	}
	return root
}

func shellCmd(opts Options, app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively with one session and price cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := (*app).out
			in := bufio.NewScanner(cmd.InOrStdin())
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				fmt.Fprint(out, "heavyctl> ")
				if !in.Scan() {
					fmt.Fprintln(out)
					return in.Err()
				}
				args, err := splitArgs(in.Text())
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
					continue
				}
				if len(args) == 0 {
					continue
				}
				if args[0] == "exit" || args[0] == "quit" {
					return nil
				}

				sub := buildRoot(opts, app, false)
				sub.SetArgs(args)
				sub.SetOut(cmd.OutOrStdout())
				sub.SetErr(cmd.ErrOrStderr())
				if err := sub.ExecuteContext(ctx); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
				}
			}
		},
	}
}

// splitArgs делит строку shell на аргументы с учётом одинарных и двойных кавычек.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quote   rune
		started bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			started = true
		case r == ' ' || r == '\t':
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}

var resumeSession = map[string]string{"session": "resume"}

func loginCmd(app **App) *cobra.Command {
	var email, code string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and access code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := (*app).Login(cmd.Context(), email, code)
			if err != nil {
				if errors.Is(err, gas.ErrApplication) {
					return fmt.Errorf("login rejected: %w", err)
				}
				return err
			}
			fmt.Fprintf((*app).out, "Logged in as %s\n", rec.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "client email")
	cmd.Flags().StringVar(&code, "code", "", "access code")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func logoutCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := (*app).Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln((*app).out, "Logged out")
			return nil
		},
	}
}

func whoamiCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:         "whoami",
		Short:       "Show the current session",
		Annotations: resumeSession,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := (*app).Resume(cmd.Context())
			if err != nil {
				return err
			}
			if rec == nil {
				return ErrNotLoggedIn
			}
			fmt.Fprintf((*app).out, "%s (since %s)\n", rec.Email, rec.CapturedAt().Format("2006-01-02 15:04"))
			if len(rec.Profile) > 0 {
				var pretty any
				if err := json.Unmarshal(rec.Profile, &pretty); err == nil {
					b, _ := json.MarshalIndent(pretty, "", "  ")
					fmt.Fprintln((*app).out, string(b))
				}
			}
			return nil
		},
	}
}

func clientsCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:         "clients",
		Short:       "List all clients",
		Annotations: resumeSession,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clients, err := (*app).client.Clients(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter((*app).out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EMAIL\tNAME\tCOMPANY\tSTATUS")
			for _, c := range clients {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Email, c.Name, c.Company, c.Status)
			}
			return w.Flush()
		},
	}
}

func pricesCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:         "prices",
		Short:       "Show the service price list",
		Annotations: resumeSession,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prices, err := (*app).Prices(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter((*app).out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SERVICE\tUNIT COST\tUNIT PRICE")
			for _, p := range prices {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Service, p.UnitCost, p.UnitPrice)
			}
			return w.Flush()
		},
	}
}

func receiptsCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:         "receipts",
		Short:       "List receipts of the logged-in client",
		Annotations: resumeSession,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := (*app).Resume(cmd.Context())
			if err != nil {
				return err
			}
			if rec == nil {
				return ErrNotLoggedIn
			}
			receipts, err := (*app).client.Receipts(cmd.Context(), rec.Email)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter((*app).out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tSTATUS")
			for _, r := range receipts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Date, r.Amount, r.Status)
			}
			return w.Flush()
		},
	}
}

func quoteCmd(app **App) *cobra.Command {
	var item pricing.Item
	cmd := &cobra.Command{
		Use:         "quote",
		Short:       "Price one line item",
		Annotations: resumeSession,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validator.New().Struct(item); err != nil {
				return fmt.Errorf("invalid item: %w", err)
			}
			prices, err := (*app).Prices(cmd.Context())
			if err != nil {
				return err
			}
			catalog, err := pricing.NewCatalog(prices)
			if err != nil {
				return err
			}
			rate, ok := catalog.Lookup(item.Service)
			if !ok {
				return fmt.Errorf("unknown service %q", item.Service)
			}
			line := pricing.Quote(rate, item)
			w := tabwriter.NewWriter((*app).out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Area\t%g\n", line.Area)
			fmt.Fprintf(w, "Cost\t$%s\n", pricing.Money(line.Cost))
			fmt.Fprintf(w, "Suggested price\t$%s\n", pricing.Money(line.SuggestedPrice))
			fmt.Fprintf(w, "Profit\t$%s\n", pricing.Money(line.Profit))
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&item.Service, "service", "", "service name from the price list")
	cmd.Flags().Float64Var(&item.Height, "height", 0, "height")
	cmd.Flags().Float64Var(&item.Width, "width", 0, "width")
	cmd.Flags().Float64Var(&item.Quantity, "quantity", 1, "quantity")
	cmd.Flags().Float64Var(&item.Multiplier, "multiplier", 1, "price multiplier")
	_ = cmd.MarkFlagRequired("service")
	return cmd
}
