package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ada-cli/ada/internal/events"
	"github.com/ada-cli/ada/internal/exitcodes"
	"github.com/ada-cli/ada/internal/httpstatus"
	"github.com/ada-cli/ada/internal/supervisor"
)

func newWatchCmd() *cobra.Command {
	var httpAddr string

	cmd := &cobra.Command{
		Use:     "watch",
		Aliases: []string{"w"},
		Short:   "Run the auto-restart watcher in the foreground",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}

			logFile, err := os.OpenFile(d.Layout.SupervisorLogFile(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return exitcodes.FilesystemErrf("open supervisor log: %v", err)
			}
			defer logFile.Close()

			sup := supervisor.New(d.Layout, d.Configs, d.States, d.Ctrl, d.Detector, d.Settings, d.Bus, logFile)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			unsub := func() {}
			if flagOutput != "json" {
				ch, cancelSub := d.Bus.Subscribe()
				unsub = cancelSub
				go func() {
					for ev := range ch {
						switch ev.Kind {
						case events.AutoRestart:
							d.Printer.Info(fmt.Sprintf("auto-restart: %s", ev.Service))
						case events.CrashLoopEntered:
							d.Printer.Error(fmt.Sprintf("crash-loop: %s (%s)", ev.Service, ev.Detail))
						}
					}
				}()
			}
			defer unsub()

			var httpServer *http.Server
			if httpAddr != "" {
				ln, err := net.Listen("tcp", httpAddr)
				if err != nil {
					return exitcodes.FilesystemErrf("bind --http %s: %v", httpAddr, err)
				}
				if tcpAddr, ok := ln.Addr().(*net.TCPAddr); !ok || !tcpAddr.IP.IsLoopback() {
					ln.Close()
					return exitcodes.InvalidArgsErrorf("--http %s: not a loopback address", httpAddr)
				}
				srv := httpstatus.New(d.Reader, d.Bus, log.New(logFile, "", log.LstdFlags))
				httpServer = &http.Server{Handler: srv.Handler()}
				go func() {
					d.Printer.Info(fmt.Sprintf("diagnostic HTTP feed listening on %s", ln.Addr()))
					if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
						d.Printer.Error(fmt.Sprintf("http feed stopped: %v", err))
					}
				}()
				defer httpServer.Close()
			}

			d.Printer.Info(fmt.Sprintf("watching %d configured service(s), ctrl-c to stop", mustCount(d)))
			err = sup.Run(ctx)
			if lockErr, ok := err.(*supervisor.ErrLockHeld); ok {
				return exitcodes.WrapError(exitcodes.LockHeld, "watch", lockErr)
			}
			if err != nil {
				return exitcodes.WrapError(exitcodes.GeneralError, "watch", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "Serve a read-only status/event feed on this loopback address (e.g. 127.0.0.1:8787)")
	return cmd
}

func mustCount(d *Deps) int {
	svcs, err := d.Configs.List()
	if err != nil {
		return 0
	}
	return len(svcs)
}
