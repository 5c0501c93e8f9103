// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/forms"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/guard"
	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	app     *App
	rootOpt appOptions

	// signin / signup
	email           string
	password        string
	passwordStdin   bool
	firstName       string
	lastName        string
	phone           string
	dateOfBirth     string
	confirmPassword string

	// categories / preferences
	categoryUserID string
	categoryIDs    []string

	// article create / edit
	articleTitle       string
	articleDescription string
	articleTags        []string
	articleCategory    string
	articleImage       string

	rootCmd = &cobra.Command{
		Use:   "inkwell",
		Short: "Read, write and react to articles from the terminal",
		Long: `Inkwell is the terminal client for the Inkwell article platform.

Sign in, pick the topics you care about, browse a personalized feed and
publish your own articles. Every screen works with flags for scripting and
with forms when a terminal is attached.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), rootOpt)
			if err != nil {
				return err
			}
			app = a
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Navigate(cmd.Context(), string(guard.RouteSignIn))
		},
	}

	// --- Authentication ---
	signInCmd = &cobra.Command{
		Use:   "signin",
		Short: "Sign in with email and password",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  runSignIn,
	}
	signUpCmd = &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  runSignUp,
	}
	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  func(cmd *cobra.Command, args []string) error { return app.logout() },
	}
	whoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.whoami()
			return nil
		},
	}

	// --- Profile ---
	profileCmd = &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  navigateTo(guard.RouteProfile),
	}
	profileShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  navigateTo(guard.RouteProfile),
	}
	profileSetCmd = &cobra.Command{
		Use:   "set <field> <value>",
		Short: "Change one profile field (firstName, lastName, email, phone, dob)",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.setProfileField(cmd.Context(), args[0], args[1])
		},
	}
	profilePreferencesCmd = &cobra.Command{
		Use:   "preferences",
		Short: "Replace your preferred categories",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.setPreferences(cmd.Context(), categoryIDs)
		},
	}

	// --- Categories ---
	categoriesCmd = &cobra.Command{
		Use:   "categories",
		Short: "List the article categories",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := app.categories.Load(cmd.Context())
			if err != nil {
				return err
			}
			app.printCategories(cats, app.categories.Selected())
			return nil
		},
	}
	categoriesSelectCmd = &cobra.Command{
		Use:   "select",
		Short: "Choose the categories your feed shows",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(categoryIDs) > 0 {
				app.input.categories = categoryIDs
			}
			target := string(guard.RouteSelectCategory)
			if categoryUserID != "" {
				target = guard.To(guard.RouteSelectCategory, "userId", categoryUserID)
			}
			return app.Navigate(cmd.Context(), target)
		},
	}

	// --- Articles ---
	articleCmd = &cobra.Command{
		Use:   "article",
		Short: "Create, view and edit articles",
	}
	articleCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Publish a new article",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  runArticleCreate,
	}
	articleViewCmd = &cobra.Command{
		Use:   "view <article-id>",
		Short: "Show one article",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Navigate(cmd.Context(), guard.To(guard.RouteViewArticle, "articleId", args[0]))
		},
	}
	articleEditCmd = &cobra.Command{
		Use:   "edit <article-id>",
		Short: "Change an article you wrote",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE:  runArticleEdit,
	}
	myArticlesCmd = &cobra.Command{
		Use:   "my-articles",
		Short: "List the articles you published",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  navigateTo(guard.RouteMyArticles),
	}

	// --- Feed ---
	feedCmd = &cobra.Command{
		Use:   "feed",
		Short: "Browse your personalized feed",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  navigateTo(guard.RouteFeed),
	}
	feedLikeCmd = &cobra.Command{
		Use:   "like <article-id>",
		Short: "Like an article, or undo a like",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.react(cmd.Context(), "feed like", args[0], datatypes.ReactionLike)
		},
	}
	feedDislikeCmd = &cobra.Command{
		Use:   "dislike <article-id>",
		Short: "Dislike an article, or undo a dislike",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.react(cmd.Context(), "feed dislike", args[0], datatypes.ReactionDislike)
		},
	}
	feedBlockCmd = &cobra.Command{
		Use:   "block <article-id>",
		Short: "Hide an article from your feed for good",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.block(cmd.Context(), args[0])
		},
	}

	openCmd = &cobra.Command{
		Use:   "open <route>",
		Short: "Open a route directly, e.g. /view-article?articleId=a1",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := app.Navigate(cmd.Context(), args[0])
			if errors.Is(err, guard.ErrUnknownRoute) {
				return UsageError("open", err)
			}
			return err
		},
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootOpt.ConfigPath, "config", "", "config file (default ~/.inkwell/inkwell.yaml)")
	pf.StringVar(&rootOpt.APIURL, "api-url", "", "backend base URL, overrides api.base_url")
	pf.StringVar(&rootOpt.Personality, "personality", "", "output style: full, standard, minimal, machine")
	pf.BoolVar(&rootOpt.NoInput, "no-input", false, "never prompt; fail when input is missing")
	pf.BoolVarP(&rootOpt.Verbose, "verbose", "v", false, "log to stderr at debug level")
	pf.StringVar(&rootOpt.MetricsFile, "metrics-file", "", "write client metrics to this file on exit")
	_ = pf.MarkHidden("metrics-file")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return UsageError(cmd.CommandPath(), err)
	})

	signInCmd.Flags().StringVar(&email, "email", "", "account email")
	signInCmd.Flags().StringVar(&password, "password", "", "account password (prefer --password-stdin)")
	signInCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")

	signUpCmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	signUpCmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	signUpCmd.Flags().StringVar(&email, "email", "", "email")
	signUpCmd.Flags().StringVar(&phone, "phone", "", "phone number, digits only")
	signUpCmd.Flags().StringVar(&dateOfBirth, "dob", "", "date of birth, YYYY-MM-DD")
	signUpCmd.Flags().StringVar(&password, "password", "", "password (prefer --password-stdin)")
	signUpCmd.Flags().StringVar(&confirmPassword, "confirm-password", "", "password again; defaults to --password")
	signUpCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")

	profilePreferencesCmd.Flags().StringSliceVar(&categoryIDs, "category", nil, "category id, repeatable")
	profileCmd.AddCommand(profileShowCmd, profileSetCmd, profilePreferencesCmd)

	categoriesSelectCmd.Flags().StringVar(&categoryUserID, "user-id", "", "user to save for (default: the signed-in user)")
	categoriesSelectCmd.Flags().StringSliceVar(&categoryIDs, "category", nil, "category id, repeatable")
	categoriesCmd.AddCommand(categoriesSelectCmd)

	for _, c := range []*cobra.Command{articleCreateCmd, articleEditCmd} {
		c.Flags().StringVar(&articleTitle, "title", "", "article title")
		c.Flags().StringVar(&articleDescription, "description", "", "article body")
		c.Flags().StringSliceVar(&articleTags, "tag", nil, "tag, repeatable, up to 5")
		c.Flags().StringVar(&articleCategory, "category", "", "category id")
		c.Flags().StringVar(&articleImage, "image", "", "image file to upload")
	}
	articleCmd.AddCommand(articleCreateCmd, articleViewCmd, articleEditCmd)

	feedCmd.AddCommand(feedLikeCmd, feedDislikeCmd, feedBlockCmd)

	rootCmd.AddCommand(
		signInCmd, signUpCmd, logoutCmd, whoamiCmd,
		profileCmd, categoriesCmd,
		articleCmd, myArticlesCmd,
		feedCmd, openCmd,
	)
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return UsageError(cmd.CommandPath(), err)
		}
		return nil
	}
}

func navigateTo(route guard.Route) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return app.Navigate(cmd.Context(), string(route))
	}
}

// changed reports whether any of the named flags was set.
func changed(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

// readPassword returns --password, or the first line of stdin with
// --password-stdin.
func readPassword(in io.Reader) (string, error) {
	if !passwordStdin {
		return password, nil
	}
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", errors.New("read password: stdin is empty")
	}
	return strings.TrimRight(sc.Text(), "\r\n"), nil
}

func runSignIn(cmd *cobra.Command, args []string) error {
	pw, err := readPassword(cmd.InOrStdin())
	if err != nil {
		return UsageError("signin", err)
	}
	if email != "" || pw != "" {
		app.input.signIn = &forms.SignInForm{Email: email, Password: pw}
	}
	return app.Navigate(cmd.Context(), string(guard.RouteSignIn))
}

func runSignUp(cmd *cobra.Command, args []string) error {
	pw, err := readPassword(cmd.InOrStdin())
	if err != nil {
		return UsageError("signup", err)
	}
	if changed(cmd, "first-name", "last-name", "email", "phone", "dob", "password", "password-stdin") {
		confirm := confirmPassword
		if !cmd.Flags().Changed("confirm-password") {
			confirm = pw
		}
		app.input.signUp = &forms.SignUpForm{
			FirstName:       firstName,
			LastName:        lastName,
			Email:           email,
			Phone:           phone,
			DateOfBirth:     dateOfBirth,
			Password:        pw,
			ConfirmPassword: confirm,
		}
	}
	return app.Navigate(cmd.Context(), string(guard.RouteSignUp))
}

func runArticleCreate(cmd *cobra.Command, args []string) error {
	if changed(cmd, "title", "description", "tag", "category", "image") {
		app.input.article = &ArticleInput{
			Title:       articleTitle,
			Description: articleDescription,
			Tags:        strings.Join(articleTags, ","),
			CategoryID:  articleCategory,
			ImagePath:   articleImage,
		}
	}
	return app.Navigate(cmd.Context(), string(guard.RouteCreateArticle))
}

func runArticleEdit(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	var edit articleEdit
	if flags.Changed("title") {
		edit.Title = &articleTitle
	}
	if flags.Changed("description") {
		edit.Description = &articleDescription
	}
	if flags.Changed("category") {
		edit.CategoryID = &articleCategory
	}
	if flags.Changed("tag") {
		tags := datatypes.SplitTags(strings.Join(articleTags, ","))
		edit.Tags = &tags
	}
	edit.ImagePath = articleImage
	return app.editArticle(cmd.Context(), args[0], edit)
}
