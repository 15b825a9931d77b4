package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/healthquest/healthquest/internal/app/engine"
)

func init() {
	setupCmd.Flags().StringVar(&setupIn.Name, "name", "", "Child's name")
	setupCmd.Flags().StringVar(&setupIn.Gender, "gender", "", "boy or girl")
	setupCmd.Flags().StringVar(&setupIn.Birthdate, "birthdate", "", "Birthdate (YYYY-MM-DD)")
	setupCmd.Flags().Float64Var(&setupIn.Height, "height", 0, "Height in cm")
	setupCmd.Flags().Float64Var(&setupIn.InitialWeight, "weight", 0, "Current weight in kg")
	setupCmd.Flags().Float64Var(&setupIn.TargetWeight, "target", 0, "Target weight in kg")
	rootCmd.AddCommand(setupCmd, weighCmd, statusCmd)
}

var setupIn engine.ProfileInput

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the profile (prompts for anything not given as a flag)",
	RunE:  runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	in := setupIn
	sc := newLineScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	if in.Name == "" {
		in.Name = prompt(sc, out, "Name")
	}
	if in.Gender == "" {
		in.Gender = prompt(sc, out, "Gender (boy/girl)")
	}
	if in.Birthdate == "" {
		in.Birthdate = prompt(sc, out, "Birthdate (YYYY-MM-DD)")
	}
	for _, f := range []struct {
		label string
		v     *float64
	}{
		{"Height (cm)", &in.Height},
		{"Weight (kg)", &in.InitialWeight},
		{"Target weight (kg)", &in.TargetWeight},
	} {
		if *f.v > 0 {
			continue
		}
		raw := prompt(sc, out, f.label)
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", f.label, raw)
		}
		*f.v = v
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	p, err := d.Engine.SaveInitialProfile(cmd.Context(), in)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Welcome, %s! Your quest starts today.\n", p.Name)
	return nil
}

var weighCmd = &cobra.Command{
	Use:   "weigh HEIGHT_CM WEIGHT_KG",
	Short: "Record today's height and weight",
	Args:  cobra.ExactArgs(2),
	RunE:  runWeigh,
}

func runWeigh(cmd *cobra.Command, args []string) error {
	height, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("height %q is not a number", args[0])
	}
	weight, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("weight %q is not a number", args[1])
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	entry, err := d.Engine.SaveHeightAndWeight(cmd.Context(), height, weight)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved for %s: %.1f cm, %.1f kg, BMI %.1f (%s)\n",
		entry.Date, entry.Height, entry.Weight, entry.BMI, entry.BMIStatus)
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show profile, points, streak and today's log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		app, err := d.Engine.AppData(cmd.Context())
		if err != nil {
			return err
		}
		renderStatus(cmd.OutOrStdout(), app)
		return nil
	},
}
