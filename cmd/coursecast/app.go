package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"coursecast/internal/assignment"
	"coursecast/internal/canvas"
	"coursecast/internal/catalog"
	"coursecast/internal/config"
	"coursecast/internal/deploy"
	"coursecast/internal/prompt"
	"coursecast/internal/ui"
)

// app owns the session state: credentials, gateway, catalog cache. It is
// the explicit session object shared by the setup, browse, and deploy
// flows; there are no ambient globals below this level.
type app struct {
	cfgPath  string
	cfg      *config.Config
	prompt   prompt.Prompter
	styles   ui.Styles
	dryRun   bool
	log      *zap.Logger
	client   *canvas.Client
	resolver *catalog.Resolver
}

func newApp(cfgPath string, dryRun bool, log *zap.Logger) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return &app{
		cfgPath: cfgPath,
		cfg:     cfg,
		prompt:  prompt.NewTerminal(),
		styles:  ui.DefaultStyles(),
		dryRun:  dryRun,
		log:     log,
	}, nil
}

// setup collects credentials, probes connectivity, and persists the config.
// A failed probe clears the stored token so a bad credential is never
// silently reused.
func (a *app) setup() error {
	fmt.Println(a.styles.Title.Render("coursecast setup"))

	rawURL, err := a.prompt.Line("Canvas base URL (e.g. canvas.example.edu)")
	if err != nil {
		return err
	}
	if err := a.cfg.SetBaseURL(rawURL); err != nil {
		return err
	}

	token, err := a.prompt.Secret("Canvas API token")
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("an API token is required")
	}
	a.cfg.Token = token

	client := canvas.New(a.cfg, a.log)
	user, err := client.VerifySelf(context.Background())
	if err != nil {
		if clearErr := a.cfg.ClearToken(a.cfgPath); clearErr != nil {
			a.log.Warn("failed to clear stored token", zap.Error(clearErr))
		}
		return fmt.Errorf("connectivity check failed: %w", err)
	}

	if err := a.cfg.Save(a.cfgPath); err != nil {
		return err
	}

	fmt.Println(a.styles.Success.Render(fmt.Sprintf("Connected as %s.", user.Name)))
	a.log.Debug("setup complete",
		zap.String("base_url", a.cfg.BaseURL),
		zap.String("token", a.cfg.MaskedToken()))

	a.client = client
	a.resolver = catalog.NewResolver(client, a.cfg.PageSize, a.log)
	return nil
}

// connect ensures a usable gateway, running setup first when credentials
// are missing.
func (a *app) connect() error {
	if a.client != nil {
		return nil
	}
	if err := a.cfg.Validate(); err != nil {
		fmt.Println(a.styles.Warning.Render("No credentials configured; running setup."))
		return a.setup()
	}
	a.client = canvas.New(a.cfg, a.log)
	a.resolver = catalog.NewResolver(a.client, a.cfg.PageSize, a.log)
	return nil
}

// interactive runs the main menu loop until the operator quits. The gateway
// is re-established on every iteration: a rejected credential tears it down,
// and the next action routes the operator back through setup.
func (a *app) interactive() error {
	if a.dryRun {
		fmt.Println(a.styles.Badge.Render("DRY RUN") + " no assignments will actually be created")
	}

	ctx := context.Background()
	for {
		if err := a.connect(); err != nil {
			return err
		}

		choice, err := a.prompt.Choose("What would you like to do?", []string{
			"Create and deploy an assignment",
			"Browse courses",
			"Refresh course list",
			"Re-run setup",
			"Quit",
		})
		if err != nil {
			return err
		}

		switch choice {
		case 0:
			err = a.deployFlow(ctx)
		case 1:
			err = a.browseCourses(ctx, false)
		case 2:
			err = a.browseCourses(ctx, true)
		case 3:
			err = a.setup()
		case 4:
			fmt.Println("Bye.")
			return nil
		}

		if err != nil {
			if canvas.IsUnauthenticated(err) {
				fmt.Println(a.styles.Error.Render("Canvas rejected the credentials; please re-run setup."))
				if clearErr := a.cfg.ClearToken(a.cfgPath); clearErr != nil {
					a.log.Warn("failed to clear stored token", zap.Error(clearErr))
				}
				a.client = nil
				a.resolver = nil
				continue
			}
			// Recoverable at the menu: report and keep the session alive.
			fmt.Println(a.styles.Error.Render(err.Error()))
		}
	}
}

// browseCourses prints the resolved catalog.
func (a *app) browseCourses(ctx context.Context, refresh bool) error {
	courses, err := a.catalogCourses(ctx, refresh)
	if err != nil {
		return err
	}
	fmt.Println(a.styles.Title.Render(fmt.Sprintf("Your courses (%d)", len(courses))))
	for _, c := range courses {
		marker := "  "
		if c.IsFavorite {
			marker = a.styles.Warning.Render("★ ")
		}
		fmt.Printf("%s%s  %s\n", marker, c.Name, a.styles.Muted.Render(c.CourseCode))
	}
	return nil
}

func (a *app) catalogCourses(ctx context.Context, refresh bool) ([]canvas.Course, error) {
	if refresh {
		return a.resolver.Refresh(ctx)
	}
	return a.resolver.Resolve(ctx)
}

// deployFlow is the full selection → build → confirm → run pipeline.
func (a *app) deployFlow(ctx context.Context) error {
	courses, err := a.resolver.Resolve(ctx)
	if err != nil {
		return err
	}

	selection, err := ui.PickCourses(courses)
	if err != nil {
		return err
	}
	if len(selection) == 0 {
		fmt.Println(a.styles.Warning.Render("No courses selected; select at least one to deploy."))
		return nil
	}

	builder := assignment.NewBuilder(a.prompt, a.client, a.client, a.dryRun, os.Stdout, a.log)
	payload, err := builder.Build(ctx, selection[0].ID)
	if err != nil {
		return err
	}

	engine := deploy.NewEngine(a.client, payload, selection, a.dryRun, a.log)

	// Explicit acknowledgment of the exact target set and summary.
	fmt.Println(a.styles.Title.Render("Ready to deploy"))
	fmt.Print(payload.Summary())
	fmt.Println("Target courses:")
	for _, c := range engine.Targets() {
		fmt.Printf("  - %s (%s)\n", c.Name, c.CourseCode)
	}

	ok, err := a.prompt.Confirm(fmt.Sprintf("Deploy to these %d course(s)", len(selection)), false)
	if err != nil {
		return err
	}
	if !ok {
		// Declining always aborts this run; nothing has been sent.
		fmt.Println(a.styles.Muted.Render("Deployment aborted."))
		return nil
	}

	if err := engine.Confirm(); err != nil {
		return err
	}
	report, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(ui.RenderReport(report))
	return nil
}
