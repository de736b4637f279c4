package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"fintrack/internal/apiclient"
	"fintrack/internal/core"
	"fintrack/internal/state"
	"fintrack/internal/store"
)

var (
	errUsage       = errors.New("usage error")
	errNotLoggedIn = errors.New("not logged in")
)

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "fintrack - personal finance tracker client")
	fmt.Fprintln(w, "\nUsage:")
	fmt.Fprintln(w, "  fintrack <command> [options]")
	fmt.Fprintln(w, "\nCommands:")
	fmt.Fprintln(w, "  login       Sign in and remember the session")
	fmt.Fprintln(w, "  register    Create an account and sign in")
	fmt.Fprintln(w, "  logout      Forget the stored session")
	fmt.Fprintln(w, "  whoami      Show the signed-in user")
	fmt.Fprintln(w, "  profile     Update name and surname")
	fmt.Fprintln(w, "  password    Change the password (signs out)")
	fmt.Fprintln(w, "  categories  List categories")
	fmt.Fprintln(w, "  types       List transaction types")
	fmt.Fprintln(w, "  list        List transactions with filters")
	fmt.Fprintln(w, "  add         Add a transaction")
	fmt.Fprintln(w, "  edit        Edit a transaction on a given page")
	fmt.Fprintln(w, "  delete      Delete a transaction")
	fmt.Fprintln(w, "  stats       Show aggregated statistics")
	fmt.Fprintln(w, "\nRun 'fintrack <command> -h' for the options of a command.")
}

type command func(ctx context.Context, st *store.Store, args []string, out io.Writer) error

var commands = map[string]command{
	"login":      runLogin,
	"register":   runRegister,
	"logout":     runLogout,
	"whoami":     runWhoami,
	"profile":    runProfile,
	"password":   runPassword,
	"categories": runCategories,
	"types":      runTypes,
	"list":       runList,
	"add":        runAdd,
	"edit":       runEdit,
	"delete":     runDelete,
	"stats":      runStats,
}

// run executes one subcommand and prints the alert it left behind.
func run(ctx context.Context, st *store.Store, name string, args []string, out io.Writer) error {
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(out, "Unknown command: %s\n\n", name)
		printUsage(out)
		return errUsage
	}
	err := cmd(ctx, st, args, out)
	printAlert(out, st.Snapshot())
	return err
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// parse returns flag.ErrHelp for -h so the command does not run.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return flag.ErrHelp
		}
		return errUsage
	}
	return nil
}

func requireSession(st *store.Store, out io.Writer) error {
	if st.Snapshot().Token == "" {
		fmt.Fprintln(out, "Not logged in. Run 'fintrack login' first.")
		return errNotLoggedIn
	}
	return nil
}

// reject reports a client-side validation error as an alert.
func reject(st *store.Store, err error) error {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		_ = st.DisplayAlert(ve.Message, core.AlertDanger)
	}
	return err
}

func runLogin(ctx context.Context, st *store.Store, args []string, out io.Writer) error {
	fs := newFlagSet("login", out)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := parse(fs, args); err != nil {
		return err
	}
	creds := core.Credentials{Email: *email, Password: *password}
	if err := core.ValidateCredentials(creds, "", false); err != nil {
		return reject(st, err)
	}
	if err := st.SetupUser(ctx, creds, apiclient.ModeLogin, "¡Inicio de sesión exitoso! Redirigiendo..."); err != nil {
		return err
	}
	printUser(out, st.Snapshot())
	return nil
}

func runRegister(ctx context.Context, st *store.Store, args []string, out io.Writer) error {
	fs := newFlagSet("register", out)
	name := fs.String("name", "", "first name")
	surname := fs.String("surname", "", "surname")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	confirm := fs.String("confirm", "", "password confirmation")
	if err := parse(fs, args); err != nil {
		return err
	}
	creds := core.Credentials{Name: *name, Surname: *surname, Email: *email, Password: *password}
	if err := core.ValidateCredentials(creds, *confirm, true); err != nil {
		return reject(st, err)
	}
	if err := st.SetupUser(ctx, creds, apiclient.ModeRegister, "¡Usuario creado! Redirigiendo..."); err != nil {
		return err
	}
	printUser(out, st.Snapshot())
	return nil
}

func runLogout(ctx context.Context, st *store.Store, _ []string, out io.Writer) error {
	st.LogoutUser(ctx)
	fmt.Fprintln(out, "Logged out.")
	return nil
}

func runWhoami(_ context.Context, st *store.Store, _ []string, out io.Writer) error {
	if err := requireSession(st, out); err != nil {
		return err
	}
	printUser(out, st.Snapshot())
	return nil
}

func runProfile(ctx context.Context, st *store.Store, args []string, out io.Writer) error {
	if err := requireSession(st, out); err != nil {
		return err
	}
	current := *st.Snapshot().User
	fs := newFlagSet("profile", out)
	name := fs.String("name", current.Name, "first name")
	surname := fs.String("surname", current.Surname, "surname")
	if err := parse(fs, args); err != nil {
		return err
	}
	current.Name, current.Surname = *name, *surname
	if err := st.UpdateUser(ctx, current); err != nil {
		return err
	}
	printUser(out, st.Snapshot())
	return nil
}

func runPassword(ctx context.Context, st *store.Store, args []string, out io.Writer) error {
	if err := requireSession(st, out); err != nil {
		return err
	}
	fs := newFlagSet("password", out)
	password := fs.String("password", "", "new password")
	confirm := fs.String("confirm", "", "new password confirmation")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := core.ValidatePasswordChange(*password, *confirm); err != nil {
		return reject(st, err)
	}
	return st.UpdatePassword(ctx, *password)
}

func runCategories(ctx context.Context, st *store.Store, _ []string, out io.Writer) error {
	if err := requireSession(st, out); err != nil {
		return err
	}
	if err := st.FetchCategoryOptions(ctx); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, c := range st.Snapshot().CategoryOptions {
		fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
	}
	return tw.Flush()
}

func runTypes(ctx context.Context, st *store.Store, _ []string, out io.Writer) error {
	if err := requireSession(st, out); err != nil {
		return err
	}
	if err := st.FetchTransactionTypes(ctx); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, t := range st.Snapshot().TransactionTypes {
		fmt.Fprintf(tw, "%d\t%s\n", t.ID, t.Name)
	}
	return tw.Flush()
}

type filterFlags struct {
	page     *int
	search   *string
	typ      *string
	category *string
	sort     *string
}

func addFilterFlags(fs *flag.FlagSet) filterFlags {
	return filterFlags{
		page:     fs.Int("page", 1, "page number"),
		search:   fs.String("search", "", "text to search in descriptions"),
		typ:      fs.String("type", core.FilterAll, "transaction type id or 'all'"),
		category: fs.String("category", core.FilterAll, "category id or 'all'"),
		sort:     fs.String("sort", string(core.SortDesc), "date order: asc or desc"),
	}
}

// apply sets the filters and fetches the list. The page is fetched first
// with page 1 so the requested page can be bounded by the page count.
func (f filterFlags) apply(ctx context.Context, st *store.Store) error {
	for field, value := range map[string]string{
		core.FieldSearch:         *f.search,
		core.FieldSearchType:     *f.typ,
		core.FieldSearchCategory: *f.category,
		core.FieldSort:           *f.sort,
	} {
		if err := st.HandleFilterChange(field, value); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	if err := st.GetTransactions(ctx); err != nil {
		return err
	}
	if *f.page != 1 {
		st.ChangePage(*f.page)
		return st.GetTransactions(ctx)
	}
	return nil
}

func runList(ctx context.Context, st *store.Store, args []string, out io.Writer) error {
	if err := requireSession(st, out); err != nil {
		return err
	}
	fs := newFlagSet("list", out)
	filters := addFilterFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := filters.apply(ctx, st); err != nil {
		return err
	}
	printTransactions(out, st.Snapshot())
	return nil
}

type formFlags struct {
	description *string
	amount      *string
	typ         *string
	date        *string
	category    *string
}

func addFormFlags(fs *flag.FlagSet, defaults core.TransactionForm) formFlags {
	return formFlags{
		description: fs.String("description", defaults.Description, "description"),
		amount:      fs.String("amount", defaults.Amount, "positive amount, e.g. 12.50"),
		typ:         fs.String("type", defaults.Type, "transaction type id"),
		date:        fs.String("date", defaults.Date, "date as YYYY-MM-DD"),
		category:    fs.String("category", defaults.Category, "category id"),
	}
}

// apply copies only the flags given on the command line into the form.
func (f formFlags) apply(fs *flag.FlagSet, st *store.Store) error {
	values := map[string]*string{
		"description": f.description,
		"amount":      f.amount,
		"type":        f.typ,
		"date":        f.date,
		"category":    f.category,
	}
	fields := map[string]string{
		"description": core.FieldDescription,
		"amount":      core.FieldAmount,
		"type":        core.FieldType,
		"date":        core.FieldDate,
		"category":    core.FieldCategory,
	}
	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		if v, ok := values[fl.Name]; ok {
			err = st.HandleInputChange(fields[fl.Name], *v)
		}
	})
	return err
}

func runAdd(ctx context.Context, st *store.Store, args []string, out io.Writer) error {
	if err := requireSession(st, out); err != nil {
		return err
	}
	st.ClearTransactionForm()
	fs := newFlagSet("add", out)
	form := addFormFlags(fs, st.Snapshot().Form)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := form.apply(fs, st); err != nil {
		return err
	}
	return st.CreateTransaction(ctx)
}

func runEdit(ctx context.Context, st *store.Store, args []string, out io.Writer) error {
	if err := requireSession(st, out); err != nil {
		return err
	}
	fs := newFlagSet("edit", out)
	id := fs.Int64("id", 0, "transaction id")
	page := fs.Int("page", 1, "page the transaction is listed on")
	form := addFormFlags(fs, core.TransactionForm{})
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		fmt.Fprintln(out, "edit: -id is required")
		return errUsage
	}

	if err := loadPage(ctx, st, *page); err != nil {
		return err
	}
	st.SetEditTransaction(*id)
	if snap := st.Snapshot(); !snap.IsEditing {
		fmt.Fprintf(out, "Transaction %d is not on page %d.\n", *id, snap.Filter.CurrentPage)
		return store.ErrNotEditing
	}
	if err := form.apply(fs, st); err != nil {
		return err
	}
	return st.EditTransaction(ctx)
}

func runDelete(ctx context.Context, st *store.Store, args []string, out io.Writer) error {
	if err := requireSession(st, out); err != nil {
		return err
	}
	fs := newFlagSet("delete", out)
	id := fs.Int64("id", 0, "transaction id")
	page := fs.Int("page", 1, "page to show after deleting")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		fmt.Fprintln(out, "delete: -id is required")
		return errUsage
	}
	if err := loadPage(ctx, st, *page); err != nil {
		return err
	}
	if err := st.DeleteTransaction(ctx, *id); err != nil {
		return err
	}
	printTransactions(out, st.Snapshot())
	return nil
}

func runStats(ctx context.Context, st *store.Store, _ []string, out io.Writer) error {
	if err := requireSession(st, out); err != nil {
		return err
	}
	if err := st.FetchTransactionStats(ctx); err != nil {
		return err
	}
	stats := st.Snapshot().Stats
	fmt.Fprintf(out, "By type:\n%s\n", stats.GroupByType)
	fmt.Fprintf(out, "By category:\n%s\n", stats.GroupByCategory)
	fmt.Fprintf(out, "Last six months:\n%s\n", stats.GroupByLastSixMonths)
	return nil
}

func loadPage(ctx context.Context, st *store.Store, page int) error {
	if err := st.GetTransactions(ctx); err != nil {
		return err
	}
	if page != 1 {
		st.ChangePage(page)
		return st.GetTransactions(ctx)
	}
	return nil
}

func printAlert(out io.Writer, s state.State) {
	if !s.ShowAlert {
		return
	}
	fmt.Fprintf(out, "[%s] %s\n", s.AlertType, s.AlertMessage)
}

func printUser(out io.Writer, s state.State) {
	if s.User == nil {
		return
	}
	fmt.Fprintf(out, "%s %s <%s> (id %d)\n", s.User.Name, s.User.Surname, s.User.Email, s.User.ID)
}

func printTransactions(out io.Writer, s state.State) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION\t")
	for _, t := range s.Transactions {
		typ := t.TypeName
		if typ == "" {
			typ = strconv.FormatInt(t.TypeID, 10)
		}
		category := t.CategoryName
		if category == "" {
			category = strconv.FormatInt(t.CategoryID, 10)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			t.ID, t.ShortDate(), typ, category, humanize.CommafWithDigits(t.Amount, 2), t.Description)
	}
	tw.Flush()
	fmt.Fprintf(out, "Page %d of %d, %s transactions\n",
		s.Filter.CurrentPage, max(1, s.NumOfPages), humanize.Comma(int64(s.Total)))
}
