package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"library-backend/internal/client"
	"library-backend/internal/client/cache"
	"library-backend/internal/client/catalog"
)

var (
	serverURL string
	tokenFlag string
	verbose   bool

	genreFlag  string
	published  int
	authorName string
	genres     []string
	password   string
	favorite   string
)

var (
	rootCmd = &cobra.Command{
		Use:          "library",
		Short:        "Command line client for the library catalog",
		SilenceUsage: true,
	}

	// --- Reads ---
	authorsCmd = &cobra.Command{
		Use:   "authors",
		Short: "List authors with their book counts",
		Args:  cobra.NoArgs,
		RunE:  runAuthors,
	}
	booksCmd = &cobra.Command{
		Use:   "books",
		Short: "List books, optionally filtered by genre",
		Args:  cobra.NoArgs,
		RunE:  runBooks,
	}
	genresCmd = &cobra.Command{
		Use:   "genres",
		Short: "List the distinct genres in the catalog",
		Args:  cobra.NoArgs,
		RunE:  runGenres,
	}
	recommendCmd = &cobra.Command{
		Use:   "recommend",
		Short: "Books in your favorite genre (requires login)",
		Args:  cobra.NoArgs,
		RunE:  runRecommend,
	}

	// --- Writes ---
	addBookCmd = &cobra.Command{
		Use:   "add-book [title]",
		Short: "Add a book (requires login)",
		Args:  cobra.ExactArgs(1),
		RunE:  runAddBook,
	}
	editAuthorCmd = &cobra.Command{
		Use:   "edit-author [name] [born]",
		Short: "Set an author's birth year (requires login)",
		Args:  cobra.ExactArgs(2),
		RunE:  runEditAuthor,
	}

	// --- Accounts ---
	createUserCmd = &cobra.Command{
		Use:   "create-user [username]",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE:  runCreateUser,
	}
	loginCmd = &cobra.Command{
		Use:   "login [username]",
		Short: "Log in and save the token",
		Args:  cobra.ExactArgs(1),
		RunE:  runLogin,
	}
	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE:  runLogout,
	}

	// --- Subscription ---
	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Follow new books as they are added",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
)

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("LIBRARY_SERVER", "http://localhost:4000"), "catalog server base URL")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", os.Getenv("LIBRARY_TOKEN"), "bearer token (defaults to the saved login)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	booksCmd.Flags().StringVar(&genreFlag, "genre", "", "only books with this genre")

	addBookCmd.Flags().IntVar(&published, "published", 0, "publication year")
	addBookCmd.Flags().StringVar(&authorName, "author", "", "author name")
	addBookCmd.Flags().StringSliceVar(&genres, "genre", nil, "genre (repeatable)")
	_ = addBookCmd.MarkFlagRequired("published")
	_ = addBookCmd.MarkFlagRequired("author")

	createUserCmd.Flags().StringVar(&favorite, "favorite-genre", "", "favorite genre")
	_ = createUserCmd.MarkFlagRequired("favorite-genre")

	loginCmd.Flags().StringVar(&password, "password", envOr("LIBRARY_PASSWORD", ""), "password")

	rootCmd.AddCommand(
		authorsCmd, booksCmd, genresCmd, recommendCmd,
		addBookCmd, editAuthorCmd,
		createUserCmd, loginCmd, logoutCmd,
		watchCmd,
	)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newSession() *client.Session {
	token := tokenFlag
	if token == "" {
		token, _ = loadToken()
	}
	return client.NewSession(client.Options{
		BaseURL:    serverURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Token:      token,
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	return cmd.Context()
}

// ========================================
// READS
// ========================================

func runAuthors(cmd *cobra.Command, args []string) error {
	authors, err := newSession().AllAuthors(cmd.Context())
	if err != nil {
		return err
	}
	printAuthors(cmd.OutOrStdout(), authors)
	return nil
}

func runBooks(cmd *cobra.Command, args []string) error {
	s := newSession()
	ctx := cmd.Context()

	var (
		books []catalog.Book
		err   error
	)
	if cmd.Flags().Changed("genre") {
		books, err = s.BooksByGenre(ctx, &genreFlag)
	} else {
		books, err = s.AllBooks(ctx)
	}
	if err != nil {
		return err
	}
	printBooks(cmd.OutOrStdout(), books)
	return nil
}

func runGenres(cmd *cobra.Command, args []string) error {
	gs, err := newSession().Genres(cmd.Context())
	if err != nil {
		return err
	}
	for _, g := range gs {
		fmt.Fprintln(cmd.OutOrStdout(), g)
	}
	return nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	favorite, books, err := newSession().Recommend(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "books in your favorite genre %s\n\n", favorite)
	printBooks(cmd.OutOrStdout(), books)
	return nil
}

// ========================================
// WRITES
// ========================================

func runAddBook(cmd *cobra.Command, args []string) error {
	b, err := newSession().AddBook(cmd.Context(), catalog.NewBook{
		Title:     args[0],
		Published: published,
		Author:    authorName,
		Genres:    genres,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %q by %s\n", b.Title, b.Author.Name)
	return nil
}

func runEditAuthor(cmd *cobra.Command, args []string) error {
	born, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("born must be a year: %w", err)
	}

	updated, err := newSession().EditAuthor(cmd.Context(), args[0], born)
	if err != nil {
		return err
	}
	if updated == nil {
		return fmt.Errorf("no author named %q", args[0])
	}
	printAuthors(cmd.OutOrStdout(), []catalog.Author{*updated})
	return nil
}

// ========================================
// ACCOUNTS
// ========================================

func runCreateUser(cmd *cobra.Command, args []string) error {
	u, err := newSession().CreateUser(cmd.Context(), args[0], favorite)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created user %s (favorite genre %s)\n", u.Username, u.FavoriteGenre)
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	token, err := newSession().Login(cmd.Context(), args[0], password)
	if err != nil {
		return err
	}
	path, err := saveToken(token)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s, token saved to %s\n", args[0], path)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	newSession().Logout()
	return removeToken()
}

// ========================================
// SUBSCRIPTION
// ========================================

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	s := newSession()

	fmt.Fprintln(out, "watching for new books, ctrl-c to stop")
	return s.Watch(ctx, func(a cache.Applied) {
		switch {
		case !a.Hit:
			return
		case a.Changed:
			fmt.Fprintf(out, "+ %s (%s, %d)\n", a.Event.Book.Title, a.Event.Book.Author.Name, a.Event.Book.Published)
		default:
			fmt.Fprintf(out, "= %s already listed\n", a.Event.Book.Title)
		}
	})
}
