package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/vanroute/tripedit/internal/common"
	"github.com/vanroute/tripedit/internal/config"
	"github.com/vanroute/tripedit/internal/document"
	internalErrors "github.com/vanroute/tripedit/internal/errors"
	"github.com/vanroute/tripedit/internal/lock"
	"github.com/vanroute/tripedit/internal/logger"
	"github.com/vanroute/tripedit/internal/publish"
	"github.com/vanroute/tripedit/internal/trips"
)

// Publisher pushes the calendar's repository to its remote
type Publisher interface {
	Run(ctx context.Context) error
	CheckSSH(ctx context.Context) error
}

// Locker manages file locking
type Locker interface {
	Acquire() error
	Release() error
}

// Logger alias to common.Logger
type Logger = common.Logger

// AppOptions contains app configuration and dependencies
type AppOptions struct {
	// Required
	Config *config.Config

	// Optional components
	Logger    Logger
	Locker    Locker
	Publisher Publisher

	// I/O dependencies
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies
	Exit         func(code int)
	ExecLookPath func(file string) (string, error)
	IsRepository func(path string) bool
}

// App is the main tripedit application
type App struct {
	Config    *config.Config
	Logger    Logger
	Locker    Locker
	Publisher Publisher

	// I/O streams
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies
	exit         func(code int)
	execLookPath func(file string) (string, error)
	isRepository func(path string) bool
}

// NewDefaultApp creates an App with standard dependencies
func NewDefaultApp(versionInfo config.VersionInfo) *App {
	cfg := config.New()
	cfg.VersionInfo = versionInfo
	cfg.LoadFromEnvironment()

	opts := AppOptions{
		Config:       cfg,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Exit:         os.Exit,
		ExecLookPath: exec.LookPath,
		IsRepository: publish.IsRepository,
	}

	return NewApp(opts)
}

// NewApp creates an App with custom dependencies
func NewApp(opts AppOptions) *App {
	if opts.Config == nil {
		panic("Config is required in AppOptions")
	}

	app := &App{
		Config:       opts.Config,
		Logger:       opts.Logger,
		Locker:       opts.Locker,
		Publisher:    opts.Publisher,
		Stdout:       opts.Stdout,
		Stderr:       opts.Stderr,
		exit:         opts.Exit,
		execLookPath: opts.ExecLookPath,
		isRepository: opts.IsRepository,
	}

	// Set defaults for nil dependencies
	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.exit == nil {
		app.exit = os.Exit
	}
	if app.execLookPath == nil {
		app.execLookPath = exec.LookPath
	}
	if app.isRepository == nil {
		app.isRepository = publish.IsRepository
	}

	return app
}

// Initialize sets up components not provided during construction
func (a *App) Initialize() error {
	// Fall back to the most recently opened document so that repeat
	// invocations can omit -file
	if a.Config.FilePath == "" {
		a.Config.FilePath = document.LastPath()
	}

	if err := a.Config.Finalize(); err != nil {
		// Since Config.Finalize() already returns a properly wrapped error,
		// we don't need to wrap it again if it's already our error type
		if internalErrors.Is(err, internalErrors.ErrInvalidConfiguration) {
			return err
		}
		return internalErrors.Wrap(internalErrors.ErrInvalidConfiguration, err.Error())
	}

	if a.Logger == nil {
		a.Logger = logger.New(a.Config.Debug, a.Config.LogFile, a.Config.Verbose)
	}

	if a.Locker == nil && a.Config.FilePath != "" {
		locker, err := lock.New(a.Config.FilePath)
		if err != nil {
			return internalErrors.Wrap(err, "failed to initialize lock")
		}
		a.Locker = locker
	}

	return nil
}

// Run executes the command named in the configuration
func (a *App) Run(ctx context.Context) error {
	// Ensure the app is fully initialised before doing any work.
	if err := a.Initialize(); err != nil {
		return err
	}

	// Handle special flags first
	if a.Config.Version || a.Config.Command == "version" {
		a.ShowVersion()
		return nil
	}

	if a.Config.Command == "" || a.Config.Command == "help" {
		a.ShowUsage()
		return nil
	}

	// Ensure we always clean up logger / lock, even on early error paths
	defer func() {
		if err := a.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Error during cleanup: %v\n", err)
		}
	}()

	switch a.Config.Command {
	case "list":
		return a.runList()
	case "show":
		return a.runShow()
	case "occupancy":
		return a.runOccupancy()
	case "calendar":
		return a.runCalendar()
	case "check":
		return a.runCheck()
	case "new":
		return a.runNew()
	case "set":
		return a.runSet()
	case "duplicate":
		return a.runDuplicate()
	case "remove":
		return a.runRemove()
	case "sort":
		return a.runSort()
	case "add-booking":
		return a.runAddBooking()
	case "update-booking":
		return a.runUpdateBooking()
	case "remove-booking":
		return a.runRemoveBooking()
	case "undo":
		return a.runUndo()
	case "publish":
		return a.runPublish(ctx)
	case "dump":
		return a.runDump()
	default:
		return internalErrors.Wrapf(internalErrors.ErrUnknownCommand,
			"unknown command %q (run \"tripedit help\" for the command list)", a.Config.Command)
	}
}

// requireDocument ensures a document path is configured
func (a *App) requireDocument() error {
	if a.Config.FilePath == "" {
		return internalErrors.NewConfigError("file", "", internalErrors.Wrap(
			internalErrors.ErrInvalidConfiguration,
			"no document: pass -file trips.json or set TRIPS_FILE (no previously opened file was found)"))
	}
	return nil
}

// tripIDArg returns the trip id positional argument
func (a *App) tripIDArg() (string, error) {
	if len(a.Config.Args) < 1 || strings.TrimSpace(a.Config.Args[0]) == "" {
		return "", internalErrors.NewConfigError("id", "", internalErrors.Wrap(
			internalErrors.ErrInvalidConfiguration,
			fmt.Sprintf("the %s command needs a trip id, e.g. tripedit %s 2026-02-03_ida_paulo-afonso-ba-salgueiro-pe",
				a.Config.Command, a.Config.Command)))
	}
	return a.Config.Args[0], nil
}

// loadDocument reads the configured document and remembers it as the most
// recently opened one.
func (a *App) loadDocument() (*document.Document, error) {
	if err := a.requireDocument(); err != nil {
		return nil, err
	}
	doc, err := document.Load(a.Config.FilePath)
	if err != nil {
		return nil, err
	}
	if err := document.RememberPath(a.Config.FilePath); err != nil {
		a.Logger.Warning("Failed to remember document path: %v", err)
	}
	return doc, nil
}

// editDocument runs one load-mutate-save cycle under the document lock. The
// previous file contents are rotated into the backup directory before the
// save, which is what the undo command later restores. With createIfMissing,
// a document that does not exist yet starts empty instead of failing.
func (a *App) editDocument(createIfMissing bool, mutate func(doc *document.Document) error) error {
	if err := a.requireDocument(); err != nil {
		return err
	}

	if err := a.Locker.Acquire(); err != nil {
		// Since Locker.Acquire() already returns a properly wrapped error,
		// we don't need to wrap it again
		if internalErrors.Is(err, internalErrors.ErrAlreadyRunning) {
			return err
		}
		return internalErrors.Wrap(internalErrors.ErrLockAcquisitionFailure, err.Error())
	}
	defer func() {
		if err := a.Locker.Release(); err != nil {
			a.Logger.Warning("Failed to release document lock: %v", err)
		}
	}()

	var doc *document.Document
	if createIfMissing {
		if _, statErr := os.Stat(a.Config.FilePath); os.IsNotExist(statErr) {
			doc = document.New()
			a.Logger.InfoToUser("Starting a new document at %s", a.Config.FilePath)
		}
	}
	if doc == nil {
		var err error
		doc, err = document.Load(a.Config.FilePath)
		if err != nil {
			return err
		}
	}

	if err := mutate(doc); err != nil {
		return err
	}

	if err := document.Backup(a.Config.FilePath, a.Config.MaxBackups); err != nil {
		return err
	}
	if err := document.Save(a.Config.FilePath, doc); err != nil {
		return err
	}
	a.Logger.Info("Saved %s (%d trips)", a.Config.FilePath, len(doc.Trips))

	if err := document.RememberPath(a.Config.FilePath); err != nil {
		a.Logger.Warning("Failed to remember document path: %v", err)
	}
	return nil
}

func (a *App) runList() error {
	doc, err := a.loadDocument()
	if err != nil {
		return err
	}
	if len(doc.Trips) == 0 {
		a.Logger.InfoToUser("The document has no trips yet")
		return nil
	}
	for _, t := range doc.Trips {
		_, _ = fmt.Fprintf(a.Stdout, "%s\n    id: %s  capacity: %d  stops: %d  bookings: %d\n",
			t.Label(), t.ID, t.Capacity, len(t.Stops), len(t.Bookings))
	}
	return nil
}

func (a *App) runShow() error {
	id, err := a.tripIDArg()
	if err != nil {
		return err
	}
	doc, err := a.loadDocument()
	if err != nil {
		return err
	}
	t, _, err := doc.Find(id)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.Stdout, "%s\n", t.Label())
	_, _ = fmt.Fprintf(a.Stdout, "id:        %s\n", t.ID)
	_, _ = fmt.Fprintf(a.Stdout, "date:      %s\n", t.Date)
	_, _ = fmt.Fprintf(a.Stdout, "direction: %s\n", t.Direction)
	_, _ = fmt.Fprintf(a.Stdout, "title:     %s\n", t.Title)
	_, _ = fmt.Fprintf(a.Stdout, "capacity:  %d\n", t.Capacity)
	_, _ = fmt.Fprintln(a.Stdout, "stops:")
	for i, s := range t.Stops {
		_, _ = fmt.Fprintf(a.Stdout, "  %2d. %s\n", i+1, s)
	}
	if len(t.Bookings) == 0 {
		_, _ = fmt.Fprintln(a.Stdout, "bookings:  none")
		return nil
	}
	_, _ = fmt.Fprintln(a.Stdout, "bookings:")
	for i, b := range t.Bookings {
		_, _ = fmt.Fprintf(a.Stdout, "  %2d. %s: %s -> %s\n", i, b.PassengerName, b.From, b.To)
	}
	return nil
}

func (a *App) runOccupancy() error {
	id, err := a.tripIDArg()
	if err != nil {
		return err
	}
	doc, err := a.loadDocument()
	if err != nil {
		return err
	}
	t, _, err := doc.Find(id)
	if err != nil {
		return err
	}

	segments := t.Occupancy()
	if len(segments) == 0 {
		a.Logger.WarningToUser("Trip %s has fewer than two stops; there are no segments to occupy", t.ID)
		return nil
	}
	_, _ = fmt.Fprintf(a.Stdout, "%s (capacity %d)\n", t.Label(), t.Capacity)
	for _, seg := range segments {
		marker := ""
		if seg.Used > t.Capacity {
			marker = "  OVERBOOKED"
		} else if seg.Free == 0 {
			marker = "  FULL"
		}
		_, _ = fmt.Fprintf(a.Stdout, "  %s -> %s: %d used, %d free%s\n",
			seg.From, seg.To, seg.Used, seg.Free, marker)
	}
	return nil
}

func (a *App) runCalendar() error {
	doc, err := a.loadDocument()
	if err != nil {
		return err
	}

	if len(a.Config.Args) == 0 {
		months := trips.Months(doc.Trips)
		if len(months) == 0 {
			a.Logger.InfoToUser("No dated trips on the calendar")
			return nil
		}
		for _, m := range months {
			_, _ = fmt.Fprintln(a.Stdout, m)
		}
		return nil
	}

	month := a.Config.Args[0]
	days := trips.MonthDays(doc.Trips, month)
	if len(days) == 0 {
		a.Logger.InfoToUser("No trips in %s", month)
		return nil
	}
	for _, day := range days {
		_, _ = fmt.Fprintf(a.Stdout, "%s  %s\n", day.Date, day.Summary())
	}
	return nil
}

// runCheck reports records that predate the edit-boundary rules: trips that
// would no longer validate, and bookings the occupancy calculator silently
// excludes. It never fails; the document stays fully editable regardless.
func (a *App) runCheck() error {
	doc, err := a.loadDocument()
	if err != nil {
		return err
	}

	problems := 0
	for i := range doc.Trips {
		t := &doc.Trips[i]
		if err := t.Validate(); err != nil {
			problems++
			a.Logger.WarningToUser("Trip %s: %v", t.ID, err)
		}
		for _, b := range t.StaleBookings() {
			problems++
			a.Logger.WarningToUser("Trip %s: booking %q (%s -> %s) does not match the current route and is not counted",
				t.ID, b.PassengerName, b.From, b.To)
		}
	}

	if problems == 0 {
		a.Logger.Success("Checked %d trips, no problems found", len(doc.Trips))
	} else {
		a.Logger.InfoToUser("Checked %d trips, %d problems found", len(doc.Trips), problems)
	}
	return nil
}

func (a *App) runNew() error {
	var t trips.Trip
	if a.Config.Template != "" {
		t = trips.Template(trips.Direction(a.Config.Template), a.Config.Extended)
	} else {
		t = trips.Trip{Capacity: trips.DefaultCapacity, Bookings: []trips.Booking{}}
	}

	t.ID = a.Config.TripID
	t.Date = a.Config.TripDate
	if a.Config.TripTitle != "" {
		t.Title = a.Config.TripTitle
	}
	if a.Config.TripDirection != "" {
		t.Direction = trips.Direction(a.Config.TripDirection)
	}
	if a.Config.TripCapacity > 0 {
		t.Capacity = a.Config.TripCapacity
	}
	if a.Config.TripStops != "" {
		t.Stops = splitStops(a.Config.TripStops)
	}

	return a.editDocument(true, func(doc *document.Document) error {
		created, err := doc.Append(t)
		if err != nil {
			return err
		}
		a.Logger.Success("Created trip %s", created.ID)
		return nil
	})
}

func (a *App) runSet() error {
	id, err := a.tripIDArg()
	if err != nil {
		return err
	}
	return a.editDocument(false, func(doc *document.Document) error {
		t, _, err := doc.Find(id)
		if err != nil {
			return err
		}
		updated := t.Clone()
		if a.Config.TripID != "" {
			updated.ID = a.Config.TripID
		}
		if a.Config.TripDate != "" {
			updated.Date = a.Config.TripDate
		}
		if a.Config.TripDirection != "" {
			updated.Direction = trips.Direction(a.Config.TripDirection)
		}
		if a.Config.TripTitle != "" {
			updated.Title = a.Config.TripTitle
		}
		if a.Config.TripCapacity > 0 {
			updated.Capacity = a.Config.TripCapacity
		}
		if a.Config.TripStops != "" {
			updated.Stops = splitStops(a.Config.TripStops)
		}
		if err := doc.Apply(id, updated); err != nil {
			return err
		}
		a.Logger.Success("Updated trip %s", updated.ID)
		return nil
	})
}

func (a *App) runDuplicate() error {
	id, err := a.tripIDArg()
	if err != nil {
		return err
	}
	return a.editDocument(false, func(doc *document.Document) error {
		dup, err := doc.Duplicate(id)
		if err != nil {
			return err
		}
		a.Logger.Success("Duplicated %s as %s", id, dup.ID)
		return nil
	})
}

func (a *App) runRemove() error {
	id, err := a.tripIDArg()
	if err != nil {
		return err
	}
	return a.editDocument(false, func(doc *document.Document) error {
		if err := doc.Remove(id); err != nil {
			return err
		}
		a.Logger.Success("Removed trip %s", id)
		return nil
	})
}

func (a *App) runSort() error {
	return a.editDocument(false, func(doc *document.Document) error {
		doc.Sort()
		a.Logger.Success("Sorted %d trips by date, direction and id", len(doc.Trips))
		return nil
	})
}

func (a *App) runAddBooking() error {
	id, err := a.tripIDArg()
	if err != nil {
		return err
	}
	b := trips.Booking{
		PassengerName: a.Config.BookingName,
		From:          a.Config.BookingFrom,
		To:            a.Config.BookingTo,
	}
	return a.editDocument(false, func(doc *document.Document) error {
		if err := doc.AddBooking(id, b); err != nil {
			return err
		}
		a.Logger.Success("Added booking for %s (%s -> %s) on trip %s", b.PassengerName, b.From, b.To, id)
		return nil
	})
}

func (a *App) runUpdateBooking() error {
	id, err := a.tripIDArg()
	if err != nil {
		return err
	}
	index := a.Config.BookingIndex
	if index < 0 {
		return internalErrors.NewConfigError("booking", index, internalErrors.Wrap(
			internalErrors.ErrInvalidConfiguration,
			"update-booking needs -booking N (the 0-based position shown by the show command)"))
	}
	return a.editDocument(false, func(doc *document.Document) error {
		t, _, err := doc.Find(id)
		if err != nil {
			return err
		}
		if index >= len(t.Bookings) {
			return internalErrors.Errorf("booking index %d out of range (trip has %d bookings)", index, len(t.Bookings))
		}

		// Unset flags keep the current values, so a passenger can change
		// just the destination without retyping everything
		b := t.Bookings[index]
		if a.Config.BookingName != "" {
			b.PassengerName = a.Config.BookingName
		}
		if a.Config.BookingFrom != "" {
			b.From = a.Config.BookingFrom
		}
		if a.Config.BookingTo != "" {
			b.To = a.Config.BookingTo
		}

		if err := doc.UpdateBooking(id, index, b); err != nil {
			return err
		}
		a.Logger.Success("Updated booking %d on trip %s", index, id)
		return nil
	})
}

func (a *App) runRemoveBooking() error {
	id, err := a.tripIDArg()
	if err != nil {
		return err
	}
	index := a.Config.BookingIndex
	if index < 0 {
		return internalErrors.NewConfigError("booking", index, internalErrors.Wrap(
			internalErrors.ErrInvalidConfiguration,
			"remove-booking needs -booking N (the 0-based position shown by the show command)"))
	}
	return a.editDocument(false, func(doc *document.Document) error {
		if err := doc.RemoveBooking(id, index); err != nil {
			return err
		}
		a.Logger.Success("Removed booking %d from trip %s", index, id)
		return nil
	})
}

// runUndo restores the newest backup over the document and consumes it, so
// repeated undos step back through the saves one at a time.
func (a *App) runUndo() error {
	if err := a.requireDocument(); err != nil {
		return err
	}

	if err := a.Locker.Acquire(); err != nil {
		if internalErrors.Is(err, internalErrors.ErrAlreadyRunning) {
			return err
		}
		return internalErrors.Wrap(internalErrors.ErrLockAcquisitionFailure, err.Error())
	}
	defer func() {
		if err := a.Locker.Release(); err != nil {
			a.Logger.Warning("Failed to release document lock: %v", err)
		}
	}()

	name, err := document.RestoreLatest(a.Config.FilePath)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(document.BackupDir(a.Config.FilePath), name)); err != nil && !os.IsNotExist(err) {
		a.Logger.Warning("Restored %s but failed to consume the backup: %v", name, err)
	}
	a.Logger.Success("Restored %s from backup %s", a.Config.FilePath, name)
	return nil
}

func (a *App) runPublish(ctx context.Context) error {
	if err := a.requireDocument(); err != nil {
		return err
	}

	if _, err := a.execLookPath("git"); err != nil {
		return internalErrors.Wrap(internalErrors.ErrGitOperationFailed,
			"git is not found in PATH")
	}

	if a.Publisher == nil {
		a.Publisher = publish.New(publish.Config{
			DocumentPath:   a.Config.FilePath,
			CommitMessage:  a.Config.CommitMessage,
			Force:          a.Config.Force,
			NonInteractive: a.Config.NonInteractive,
		}, a.Logger)
	}

	if a.Config.CheckSSH {
		return a.Publisher.CheckSSH(ctx)
	}

	if !a.isRepository(a.Config.FilePath) {
		return internalErrors.Wrapf(internalErrors.ErrNotGitRepository,
			"%s is not inside a git repository", filepath.Dir(a.Config.FilePath))
	}

	return a.Publisher.Run(ctx)
}

// runDump writes the fully parsed document for debugging a file that renders
// strangely in the other commands.
func (a *App) runDump() error {
	doc, err := a.loadDocument()
	if err != nil {
		return err
	}
	spew.Fdump(a.Stdout, doc)
	return nil
}

// splitStops parses the semicolon-separated -stops flag value
func splitStops(value string) []string {
	return trips.CleanStops(strings.Split(value, ";"))
}

// ShowVersion displays version information
func (a *App) ShowVersion() {
	_, _ = fmt.Fprintf(a.Stdout, "tripedit %s (%s) built on %s\n",
		a.Config.VersionInfo.Version,
		a.Config.VersionInfo.Commit,
		a.Config.VersionInfo.Date)
}

// ShowUsage displays the command list
func (a *App) ShowUsage() {
	_, _ = fmt.Fprint(a.Stdout, `tripedit - edits the trips.json travel calendar

Usage: tripedit <command> [flags] [args]

Viewing:
  list                        List every trip
  show <id>                   Show one trip with its stops and bookings
  occupancy <id>              Per-segment seat usage for one trip
  calendar [YYYY-MM]          Months with trips, or one month day by day
  check                       Report trips and bookings that no longer validate

Editing:
  new                         Create a trip (-date, -direction, -title, -capacity,
                              -stops "A;B;C" or -template ida|volta [-extended])
  set <id>                    Update trip fields (unset flags keep current values)
  duplicate <id>              Copy a trip under a new id
  remove <id>                 Delete a trip
  sort                        Order trips by date, direction and id
  add-booking <id>            Add a booking (-name, -from, -to)
  update-booking <id>         Change a booking (-booking N plus fields to change)
  remove-booking <id>         Delete a booking (-booking N)
  undo                        Restore the state before the last save

Publishing:
  publish                     Commit and push the document's repository
                              (-m message, -force, -check-ssh, -non-interactive)

Other:
  dump                        Print the parsed document structure
  version                     Print version information

The document is chosen with -file or TRIPS_FILE and defaults to the most
recently opened one. Run tripedit <command> -h for flag details.
`)
}

// Close releases resources held by the App
func (a *App) Close() error {
	var errs []error

	// Release lock if it exists
	if a.Locker != nil {
		if err := a.Locker.Release(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("Failed to release lock during cleanup: %v", err)
			} else {
				_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to release lock during cleanup: %v\n", err)
			}
			errs = append(errs, err)
		}
	}

	if a.Logger != nil {
		if l, ok := a.Logger.(*logger.DefaultLogger); ok && l != nil {
			if err := l.Close(); err != nil {
				_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to close logger: %v\n", err)
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
