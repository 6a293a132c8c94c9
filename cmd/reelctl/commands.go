package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/GoArmGo/ReelApp/internal/client/apiclient"
	"github.com/GoArmGo/ReelApp/internal/client/feed"
	"github.com/GoArmGo/ReelApp/internal/client/upload"
	"github.com/GoArmGo/ReelApp/internal/config"
	"github.com/GoArmGo/ReelApp/internal/domain"
)

type cli struct {
	cfg    *config.ClientConfig
	api    *apiclient.Client
	logger *slog.Logger
	out    io.Writer
	in     io.Reader
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return c.register(ctx, args)
	case "login":
		return c.login(ctx, args)
	case "logout":
		return c.api.Logout(ctx)
	case "whoami":
		u, err := c.api.Session(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s %s\n", u.ID, u.Email)
		return nil
	case "list":
		return c.list(ctx)
	case "upload":
		return c.upload(ctx, args)
	case "publish":
		return c.publish(ctx, args)
	case "feed":
		return c.feed(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return nil
	}
	return fmt.Errorf("неизвестная команда %q", cmd)
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "пароль")
	confirm := fs.String("confirm", "", "повтор пароля")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := c.api.Register(ctx, *email, *password, *confirm); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Registration successful, please log in")
	return nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "пароль")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := c.api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	// токен печатается для export REELAPP_TOKEN=...
	fmt.Fprintln(c.out, res.Token)
	return nil
}

func (c *cli) list(ctx context.Context) error {
	videos, err := c.api.ListVideos(ctx)
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		fmt.Fprintln(c.out, "No videos found")
		return nil
	}
	for _, v := range videos {
		fmt.Fprintf(c.out, "%s\t%s\t%s\n", v.ID, v.Title, v.VideoURL)
	}
	return nil
}

func (c *cli) newUploader() *upload.Uploader {
	return upload.NewUploader(c.api, c.cfg.UploadURL, &http.Client{}, c.logger)
}

// uploadFile открывает, проверяет и отправляет один файл, печатая прогресс.
func (c *cli) uploadFile(ctx context.Context, path string, category upload.Category) (*upload.Result, error) {
	f, err := upload.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	u := c.newUploader()
	return u.Upload(ctx, f, category, func(fraction float64) {
		fmt.Fprintf(c.out, "\r%s: %3.0f%%", f.Name, fraction*100)
		if fraction >= 1 {
			fmt.Fprintln(c.out)
		}
	})
}

func (c *cli) upload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	kind := fs.String("type", "video", "image или video")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("укажите путь к файлу")
	}

	category, err := upload.ParseCategory(*kind)
	if err != nil {
		return err
	}

	res, err := c.uploadFile(ctx, fs.Arg(0), category)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// publish загружает превью и видео, затем создаёт запись о видео.
func (c *cli) publish(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	title := fs.String("title", "", "заголовок")
	description := fs.String("description", "", "описание")
	videoPath := fs.String("video", "", "файл видео")
	thumbPath := fs.String("thumbnail", "", "файл превью")
	noControls := fs.Bool("no-controls", false, "скрыть элементы управления плеером")
	var quality optionalInt
	fs.Var(&quality, "quality", "качество 1-100 (по умолчанию решает сервер)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *videoPath == "" || *thumbPath == "" {
		return errors.New("нужны -video и -thumbnail")
	}
	if c.api.Token() == "" {
		return errors.New("сначала выполните login и задайте REELAPP_TOKEN")
	}

	thumb, err := c.uploadFile(ctx, *thumbPath, upload.CategoryImage)
	if err != nil {
		return fmt.Errorf("превью: %w", err)
	}
	video, err := c.uploadFile(ctx, *videoPath, upload.CategoryVideo)
	if err != nil {
		return fmt.Errorf("видео: %w", err)
	}

	in := &domain.CreateVideoInput{
		Title:        *title,
		Description:  *description,
		VideoURL:     video.URL,
		ThumbnailURL: thumb.URL,
	}
	if *noControls {
		controls := false
		in.Controls = &controls
	}
	if quality.value != nil {
		in.Transformation = &domain.TransformationInput{Quality: quality.value}
	}

	created, err := c.api.CreateVideo(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created %s\n", created.ID)
	return nil
}

// optionalInt: числовой флаг, который отличает явный 0 от отсутствия флага.
type optionalInt struct {
	value *int
}

func (o *optionalInt) String() string {
	if o == nil || o.value == nil {
		return ""
	}
	return strconv.Itoa(*o.value)
}

func (o *optionalInt) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	o.value = &v
	return nil
}

// terminalScreen «монтирует» плеер, печатая видео в терминал.
type terminalScreen struct {
	out io.Writer
}

type terminalPlayer struct {
	out   io.Writer
	title string
}

func (p *terminalPlayer) Stop() {
	fmt.Fprintf(p.out, "■ stopped %s\n", p.title)
}

func (s *terminalScreen) Mount(v domain.Video, opts feed.PlayOptions) (feed.Player, error) {
	fmt.Fprintf(s.out, "▶ %s - %s\n  %s (autoplay=%v loop=%v controls=%v)\n",
		v.Title, v.Description, v.VideoURL, opts.Autoplay, opts.Loop, opts.Controls)
	return &terminalPlayer{out: s.out, title: v.Title}, nil
}

func (c *cli) feed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("feed", flag.ContinueOnError)
	id := fs.String("id", "", "id видео, с которого начать")
	if err := fs.Parse(args); err != nil {
		return err
	}

	nav := feed.NewNavigator(c.api, &terminalScreen{out: c.out}, c.logger)
	defer nav.Close()

	if err := nav.Load(ctx, *id); err != nil {
		return err
	}
	if nav.Status() == feed.StatusEmpty {
		fmt.Fprintln(c.out, "No videos found")
		return nil
	}

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprintf(c.out, "[%d/%d] %s\n", nav.Index()+1, nav.Len(), controlsHint(nav))
		if !scanner.Scan() {
			return scanner.Err()
		}

		var err error
		switch strings.TrimSpace(scanner.Text()) {
		case "n":
			err = nav.Next()
		case "p":
			err = nav.Prev()
		case "q":
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// controlsHint показывает только доступные переходы.
func controlsHint(nav *feed.Navigator) string {
	var hints []string
	if nav.HasPrev() {
		hints = append(hints, "p=prev")
	}
	if nav.HasNext() {
		hints = append(hints, "n=next")
	}
	hints = append(hints, "q=quit")
	return strings.Join(hints, " ")
}
