// Package main is the VLINKY interactive client. It signs a user in, keeps
// their favorites and creator profile in sync, and rates delivered videos.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/vlinky/vlinky/internal/client/api"
	"github.com/vlinky/vlinky/internal/client/favorites"
	"github.com/vlinky/vlinky/internal/client/notify"
	"github.com/vlinky/vlinky/internal/client/onboarding"
	"github.com/vlinky/vlinky/internal/client/profilesync"
	"github.com/vlinky/vlinky/internal/client/rating"
	"github.com/vlinky/vlinky/internal/client/session"
	"github.com/vlinky/vlinky/internal/client/storage"
	"github.com/vlinky/vlinky/internal/logger"
)

var (
	version   string
	buildDate string
)

// syncBackend narrows the API client's subscription to profilesync.Feed.
type syncBackend struct {
	*api.Client
}

func (b syncBackend) SubscribeApplications(ctx context.Context) (profilesync.Feed, error) {
	sub, err := b.Client.SubscribeApplications(ctx)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

type app struct {
	ctx      context.Context
	client   *api.Client
	store    *session.Store
	profile  *storage.ProfileStore
	favs     *favorites.Hook
	syncer   *profilesync.Syncer
	console  *notify.Console
	in       *bufio.Scanner
	out      io.Writer
	stopSync func()
}

func (a *app) signedIn(userID string) {
	a.store.SignIn(userID)
	if err := a.favs.Load(a.ctx); err != nil {
		fmt.Fprintln(a.out, "Failed to load favorites:", err)
	}
	stop, err := a.syncer.Start(a.ctx, userID)
	if err != nil {
		fmt.Fprintln(a.out, "Realtime profile updates unavailable:", err)
	}
	a.stopSync = stop
}

func (a *app) signedOut() {
	if a.stopSync != nil {
		a.stopSync()
		a.stopSync = nil
	}
	a.store.SignOut()
	_ = a.favs.Load(a.ctx)
}

func (a *app) prompt(label string) string {
	fmt.Fprint(a.out, label)
	if !a.in.Scan() {
		return ""
	}
	return strings.TrimSpace(a.in.Text())
}

// repl runs the interactive shell loop.
func (a *app) repl() {
	for {
		fmt.Fprint(a.out, "vlinky> ")
		if !a.in.Scan() {
			break
		}
		args := strings.Fields(a.in.Text())
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Fprintln(a.out, "Available commands: help, register <email> <password>, login <email> <password>, logout, me,")
			fmt.Fprintln(a.out, "  creators [query], countries, favs, fav <creatorId>, request <creatorId> <occasion>, requests,")
			fmt.Fprintln(a.out, "  rate <requestId> <1-5>, apply, sync, profile, exit")
		case "register", "login":
			if len(args) < 3 {
				fmt.Fprintf(a.out, "Usage: %s <email> <password>\n", args[0])
				continue
			}
			call := a.client.Login
			if args[0] == "register" {
				call = a.client.Register
			}
			s, err := call(a.ctx, args[1], args[2])
			if err != nil {
				a.console.Notify(notify.Error, err.Error())
				continue
			}
			a.signedIn(s.UserID)
			a.console.Notify(notify.Success, "Signed in")
		case "logout":
			_ = a.client.Logout(a.ctx)
			a.signedOut()
			a.console.Notify(notify.Info, "Signed out")
		case "me":
			fmt.Fprintf(a.out, "%s %s\n", a.store.State(), a.store.UserID())
		case "creators":
			list, err := a.client.Creators(a.ctx, strings.Join(args[1:], " "), "", 0)
			if err != nil {
				a.console.Notify(notify.Error, err.Error())
				continue
			}
			for _, c := range list {
				mark := " "
				if a.favs.IsFavorited(c.ID) {
					mark = "♥"
				}
				fmt.Fprintf(a.out, "%s %s  %s (%s)  %.1f★ from %d  $%.2f\n",
					mark, c.ID, c.DisplayName, c.Category, c.AverageRating, c.RatingCount, float64(c.PriceCents)/100)
			}
		case "countries":
			list, err := a.client.Countries(a.ctx)
			if err != nil {
				a.console.Notify(notify.Error, err.Error())
				continue
			}
			for _, c := range list {
				fmt.Fprintf(a.out, "%s %s %s\n", c.FlagEmoji, c.Code, c.Name)
			}
		case "favs":
			for _, f := range a.favs.Favorites() {
				fmt.Fprintln(a.out, f.CreatorID)
			}
		case "fav":
			if len(args) < 2 {
				fmt.Fprintln(a.out, "Usage: fav <creatorId>")
				continue
			}
			_ = a.favs.Toggle(a.ctx, args[1])
		case "request":
			if len(args) < 3 {
				fmt.Fprintln(a.out, "Usage: request <creatorId> <occasion>")
				continue
			}
			instructions := a.prompt("Instructions: ")
			vr, err := a.client.CreateVideoRequest(a.ctx, args[1], strings.Join(args[2:], " "), instructions)
			if err != nil {
				a.console.Notify(notify.Error, err.Error())
				continue
			}
			a.console.Notify(notify.Success, "Requested video "+vr.ID)
		case "requests":
			list, err := a.client.VideoRequests(a.ctx)
			if err != nil {
				a.console.Notify(notify.Error, err.Error())
				continue
			}
			for _, vr := range list {
				stars := 0
				if vr.Rating != nil {
					stars = *vr.Rating
				}
				fmt.Fprintf(a.out, "%s  %s  %s  %s\n", vr.ID, vr.Occasion, vr.Status, rating.New(nil, vr.ID, stars))
			}
		case "rate":
			a.rate(args[1:])
		case "apply":
			a.apply()
		case "sync":
			_ = a.syncer.Resync(a.ctx)
		case "profile":
			p := a.profile.Get()
			if p.Empty() {
				fmt.Fprintln(a.out, "No creator profile synced")
				continue
			}
			fmt.Fprintf(a.out, "%s  %s  %s\n", p.CreatorID, p.CreatorName, p.CreatorAvatar)
			if t, ok := a.syncer.LastSyncTime(); ok {
				fmt.Fprintln(a.out, "Last synced:", t.Format("2006-01-02 15:04:05"))
			}
		case "exit":
			fmt.Fprintln(a.out, "Bye")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func (a *app) rate(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: rate <requestId> <1-5>")
		return
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintln(a.out, "Rating must be a number")
		return
	}

	current := 0
	list, err := a.client.VideoRequests(a.ctx)
	if err != nil {
		a.console.Notify(notify.Error, err.Error())
		return
	}
	for _, vr := range list {
		if vr.ID == args[0] && vr.Rating != nil {
			current = *vr.Rating
		}
	}

	w := rating.New(a.client, args[0], current)
	w.Select(n)
	if err := w.Submit(a.ctx); err != nil {
		a.console.Notify(notify.Error, "Rating not saved: "+err.Error())
		return
	}
	a.console.Notify(notify.Success, "Rated "+w.String())
}

// apply walks the onboarding steps, prompting for each step's fields.
func (a *app) apply() {
	flow := onboarding.New(a.client)
	for {
		fmt.Fprintf(a.out, "== %s (%s) ==\n", flow.Step(), flow.Label())
		switch flow.Step() {
		case onboarding.StepProfile:
			flow.Form.DisplayName = a.prompt("Display name: ")
			flow.Form.Bio = a.prompt("Bio: ")
			flow.Form.AvatarURL = a.prompt("Avatar URL (optional): ")
		case onboarding.StepCategory:
			flow.Form.Category = a.prompt("Category: ")
			flow.Form.CountryCode = a.prompt("Country code (optional): ")
		case onboarding.StepPricing:
			cents, _ := strconv.ParseInt(a.prompt("Price in cents: "), 10, 64)
			flow.Form.PriceCents = cents
		case onboarding.StepReview:
			fmt.Fprintf(a.out, "%+v\n", flow.Form)
			switch a.prompt("submit / back / cancel: ") {
			case "submit":
				created, err := flow.Submit(a.ctx)
				if err != nil {
					a.console.Notify(notify.Error, err.Error())
					continue
				}
				a.console.Notify(notify.Success, "Application "+created.ID+" is "+string(created.Status))
				return
			case "back":
				flow.Back()
			default:
				return
			}
			continue
		}
		if err := flow.Next(); err != nil {
			a.console.Notify(notify.Error, err.Error())
		}
	}
}

// main parses command-line flags and starts the shell.
func main() {
	var (
		baseURL     string
		caFile      string
		profilePath string
		logLevel    string
		showVer     bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert for HTTPS servers")
	flag.StringVar(&profilePath, "profile", "profile.json", "path of the local creator profile mirror")
	flag.StringVar(&logLevel, "l", "error", "log level")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("VLINKY Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	log := logger.New()
	if err := log.Init(logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Log.Sync() }()

	httpClient, err := api.NewHTTPClient(caFile)
	if err != nil {
		log.Log.Fatal("failed to configure HTTP client", zap.Error(err))
	}
	client := api.New(baseURL, httpClient)

	profile := storage.NewProfileStore(profilePath)
	if err := profile.Load(); err != nil {
		log.Log.Warn("ignoring unreadable profile mirror", zap.Error(err))
	}
	writer, err := profile.ClaimWriter()
	if err != nil {
		log.Log.Fatal("profile store", zap.Error(err))
	}
	defer writer.Release()

	console := &notify.Console{Out: os.Stdout, Log: log.Log}
	store := session.NewStore()

	a := &app{
		ctx:     context.Background(),
		client:  client,
		store:   store,
		profile: profile,
		favs:    favorites.New(client, store, console, console, log.Log),
		syncer:  profilesync.New(syncBackend{client}, writer, console, log.Log),
		console: console,
		in:      bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
	}
	defer func() {
		if a.stopSync != nil {
			a.stopSync()
		}
	}()

	cancel := store.Watch(func(st session.State, userID string) {
		log.Log.Debug("session changed", zap.Stringer("state", st), zap.String("user_id", userID))
	})
	defer cancel()

	session.Gate(store, func() { fmt.Println("Loading session...") }, func() {})
	store.Resolve(a.ctx, client)
	session.Gate(store, func() {}, a.repl)
}
