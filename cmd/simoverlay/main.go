package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simwidget/overlay/internal/config"
	"github.com/simwidget/overlay/internal/control"
	"github.com/simwidget/overlay/internal/diag"
)

var (
	version = "0.1.0"
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "simoverlay",
	Short: "Simwidget DirectX telemetry overlay",
	Long:  `Simwidget overlay - draws live simulator telemetry over a DirectX 11 or 12 swap chain and serves a local control channel.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the overlay with a self-hosted render window",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runOverlay(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running overlay over the control channel",
	Run: func(cmd *cobra.Command, args []string) {
		checkStatus()
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the overlay panel",
	Run: func(cmd *cobra.Command, args []string) {
		controlAction(func(c *control.Client) error { return c.Show() })
	},
}

var hideCmd = &cobra.Command{
	Use:   "hide",
	Short: "Hide the overlay panel",
	Run: func(cmd *cobra.Command, args []string) {
		controlAction(func(c *control.Client) error { return c.Hide() })
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle overlay panel visibility",
	Run: func(cmd *cobra.Command, args []string) {
		controlAction(func(c *control.Client) error {
			visible, err := c.Toggle()
			if err != nil {
				return err
			}
			if visible {
				fmt.Println("Overlay: visible")
			} else {
				fmt.Println("Overlay: hidden")
			}
			return nil
		})
	},
}

var cornerCmd = &cobra.Command{
	Use:   "corner [top-left|top-right|bottom-left|bottom-right]",
	Short: "Move the overlay panel to a corner",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		controlAction(func(c *control.Client) error { return c.SetCorner(args[0]) })
	},
}

var mirrorCmd = &cobra.Command{
	Use:   "mirror [on|off]",
	Short: "Enable or disable the frame mirror stream",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var enabled bool
		switch args[0] {
		case "on":
			enabled = true
		case "off":
			enabled = false
		default:
			fmt.Fprintf(os.Stderr, "mirror: want on or off, got %q\n", args[0])
			os.Exit(1)
		}
		controlAction(func(c *control.Client) error { return c.SetMirror(enabled) })
	},
}

var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "List graphics adapters seen by DXGI and the driver",
	Run: func(cmd *cobra.Command, args []string) {
		listAdapters()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("simoverlay v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the per-user overlay.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(hideCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(cornerCmd)
	rootCmd.AddCommand(mirrorCmd)
	rootCmd.AddCommand(adaptersCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func controlClient() *control.Client {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		cfg = config.Default()
	}
	return control.NewClient(cfg.ControlPipe)
}

func controlAction(fn func(*control.Client) error) {
	if err := fn(controlClient()); err != nil {
		fmt.Fprintf(os.Stderr, "Overlay not reachable: %v\n", err)
		os.Exit(1)
	}
}

func checkStatus() {
	reply, err := controlClient().Status()
	if err != nil {
		fmt.Println("Status: not running")
		return
	}

	fmt.Printf("Status: running (v%s)\n", reply.Version)
	fmt.Printf("  State:         %s\n", reply.State)
	fmt.Printf("  Frames:        %d\n", reply.Frames)
	fmt.Printf("  Active cycles: %d\n", reply.ActiveCycles)
	fmt.Printf("  Init failures: %d\n", reply.InitFailures)
	fmt.Printf("  Telemetry:     %s\n", linkWord(reply.TelemetryConnected))
	fmt.Printf("  Panel:         %s\n", visWord(reply.OverlayVisible))
	fmt.Printf("  Mirror:        %s\n", onWord(reply.MirrorEnabled))
}

func linkWord(b bool) string {
	if b {
		return "connected"
	}
	return "disconnected"
}

func visWord(b bool) string {
	if b {
		return "visible"
	}
	return "hidden"
}

func onWord(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func listAdapters() {
	report, err := diag.Collect()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Print(report.String())
}
