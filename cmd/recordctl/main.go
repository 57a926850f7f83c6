// recordctl is a terminal client for the patient registry. It keeps a
// durable session in a local bbolt file, mirrors the record set in an
// in-memory cache, and routes every mutation through the same permission
// table the server enforces.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/neuroguard/patient-registry/internal/client/cache"
	"github.com/neuroguard/patient-registry/internal/client/mutate"
	"github.com/neuroguard/patient-registry/internal/client/remote"
	"github.com/neuroguard/patient-registry/internal/client/session"
	"github.com/neuroguard/patient-registry/internal/core/domain"
	"github.com/neuroguard/patient-registry/pkg/logger"
)

type app struct {
	client  *remote.Client
	store   *session.BoltStore
	session *session.Session
	cache   *cache.Cache
	mutate  *mutate.Orchestrator
}

func newApp(serverURL, sessionPath string) (*app, error) {
	if sessionPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		sessionPath = filepath.Join(home, ".recordctl", "session.db")
	}
	if err := os.MkdirAll(filepath.Dir(sessionPath), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	store, err := session.OpenBolt(sessionPath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	sess := session.New(store)
	if err := sess.Restore(); err != nil {
		store.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	client := remote.New(serverURL)
	recordCache := cache.New(client, sess)
	log := logger.Init(logger.Options{Level: "warn", Pretty: true, Output: os.Stderr, Service: "recordctl"})

	return &app{
		client:  client,
		store:   store,
		session: sess,
		cache:   recordCache,
		mutate:  mutate.New(client, sess, recordCache, log),
	}, nil
}

func (a *app) close() {
	_ = a.store.Close()
}

// refresh fills the cache, which every read command needs first.
func (a *app) refresh(ctx context.Context) error {
	if err := a.cache.Refresh(ctx); err != nil {
		return fmt.Errorf("fetch records: %w", err)
	}
	return nil
}

func main() {
	var (
		serverURL   string
		sessionPath string
	)

	root := &cobra.Command{
		Use:           "recordctl",
		Short:         "Patient registry client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "registry server URL")
	root.PersistentFlags().StringVar(&sessionPath, "session-file", "", "path to the session database (default ~/.recordctl/session.db)")

	open := func() (*app, error) { return newApp(serverURL, sessionPath) }

	root.AddCommand(
		loginCmd(open),
		registerCmd(open),
		logoutCmd(open),
		whoamiCmd(open),
		listCmd(open),
		statsCmd(open),
		createCmd(open),
		updateCmd(open),
		deleteCmd(open),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loginCmd(open func() (*app, error)) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.session.Login(res.User, res.Token); err != nil {
				return fmt.Errorf("persist session: %w", err)
			}
			fmt.Printf("logged in as %s (%s)\n", res.User.Username, res.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func registerCmd(open func() (*app, error)) *cobra.Command {
	var username, email, password, role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.client.Register(cmd.Context(), username, email, password, role)
			if err != nil {
				return err
			}
			if err := a.session.Login(res.User, res.Token); err != nil {
				return fmt.Errorf("persist session: %w", err)
			}
			fmt.Printf("registered %s (%s)\n", res.User.Username, res.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&role, "role", "", "account role (user or doctor)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(open func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the token and clear the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			// Server revocation is best effort: the local session clears
			// regardless, so logout always leaves the client signed out.
			if token := a.session.Credential(); token != "" {
				if err := a.client.Logout(cmd.Context(), token); err != nil {
					fmt.Fprintln(os.Stderr, "warning: server-side revocation failed:", err)
				}
			}
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func whoamiCmd(open func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			identity, ok := a.session.Identity()
			if !ok {
				fmt.Println("not logged in")
				return nil
			}
			fmt.Printf("%s <%s> role=%s\n", identity.Username, identity.Email, identity.Role)
			return nil
		},
	}
}

func listCmd(open func() (*app, error)) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patient records",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.refresh(cmd.Context()); err != nil {
				return err
			}
			printPatients(a.cache.Filter(filter))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "substring match on name, id, or gender")
	return cmd
}

func statsCmd(open func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate statistics over all records",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.refresh(cmd.Context()); err != nil {
				return err
			}
			agg := a.cache.Aggregate()
			fmt.Printf("records:             %d\n", agg.Count)
			fmt.Printf("mean age:            %.1f\n", agg.MeanAge)
			fmt.Printf("mean glucose:        %.1f\n", agg.MeanGlucose)
			fmt.Printf("stroke history:      %d\n", agg.StrokeHistory)
			fmt.Printf("predicted high risk: %d\n", agg.PredictedHighRisk)
			return nil
		},
	}
}

func createCmd(open func() (*app, error)) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a patient record",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			res := a.mutate.Create(cmd.Context(), f.draft(cmd))
			if res.Err != nil {
				return res.Err
			}
			fmt.Printf("created %s (%s)\n", res.Patient.ID, res.Patient.Name)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func updateCmd(open func() (*app, error)) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a patient record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			// Edits target a record we have seen: load the cache first.
			if err := a.refresh(cmd.Context()); err != nil {
				return err
			}
			res := a.mutate.Update(cmd.Context(), args[0], f.draft(cmd))
			if res.Err != nil {
				return res.Err
			}
			fmt.Printf("updated %s\n", res.Patient.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func deleteCmd(open func() (*app, error)) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a patient record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			confirm := func() bool {
				if yes {
					return true
				}
				fmt.Printf("delete record %s? [y/N]: ", args[0])
				line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				answer := strings.ToLower(strings.TrimSpace(line))
				return answer == "y" || answer == "yes"
			}

			res := a.mutate.Delete(cmd.Context(), args[0], confirm)
			if res.Err != nil {
				return res.Err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

// draftFlags collects the patient field flags shared by create and update.
// Only flags the user actually set end up in the draft, so updates stay
// partial.
type draftFlags struct {
	name          string
	age           int
	gender        string
	hypertension  int
	heartDisease  int
	everMarried   string
	workType      string
	residenceType string
	glucose       float64
	bmi           float64
	smoking       string
	stroke        int
	prediction    float64
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "patient name")
	cmd.Flags().IntVar(&f.age, "age", 0, "age in years")
	cmd.Flags().StringVar(&f.gender, "gender", "", "Male, Female, or Other")
	cmd.Flags().IntVar(&f.hypertension, "hypertension", 0, "1 if hypertensive, else 0")
	cmd.Flags().IntVar(&f.heartDisease, "heart-disease", 0, "1 if heart disease present, else 0")
	cmd.Flags().StringVar(&f.everMarried, "ever-married", "", "Yes or No")
	cmd.Flags().StringVar(&f.workType, "work-type", "", "Private, Self-employed, Govt_job, children, or Never_worked")
	cmd.Flags().StringVar(&f.residenceType, "residence", "", "Urban or Rural")
	cmd.Flags().Float64Var(&f.glucose, "glucose", 0, "average glucose level")
	cmd.Flags().Float64Var(&f.bmi, "bmi", 0, "body mass index")
	cmd.Flags().StringVar(&f.smoking, "smoking", "", "'formerly smoked', 'never smoked', smokes, or Unknown")
	cmd.Flags().IntVar(&f.stroke, "stroke", 0, "1 if a stroke has occurred, else 0")
	cmd.Flags().Float64Var(&f.prediction, "prediction", 0, "model stroke probability between 0 and 1")
}

func (f *draftFlags) draft(cmd *cobra.Command) domain.PatientDraft {
	var d domain.PatientDraft
	set := cmd.Flags().Changed
	if set("name") {
		d.Name = &f.name
	}
	if set("age") {
		d.Age = &f.age
	}
	if set("gender") {
		d.Gender = &f.gender
	}
	if set("hypertension") {
		d.Hypertension = &f.hypertension
	}
	if set("heart-disease") {
		d.HeartDisease = &f.heartDisease
	}
	if set("ever-married") {
		d.EverMarried = &f.everMarried
	}
	if set("work-type") {
		d.WorkType = &f.workType
	}
	if set("residence") {
		d.ResidenceType = &f.residenceType
	}
	if set("glucose") {
		d.AvgGlucoseLevel = &f.glucose
	}
	if set("bmi") {
		d.BMI = &f.bmi
	}
	if set("smoking") {
		d.SmokingStatus = &f.smoking
	}
	if set("stroke") {
		d.Stroke = &f.stroke
	}
	if set("prediction") {
		d.StrokePrediction = &f.prediction
	}
	return d
}

func printPatients(patients []domain.Patient) {
	if len(patients) == 0 {
		fmt.Println("no records")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tAGE\tGENDER\tGLUCOSE\tBMI\tSTROKE\tRISK")
	for _, p := range patients {
		risk := "low"
		if p.StrokePrediction >= 0.5 {
			risk = "HIGH"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.1f\t%.1f\t%d\t%s\n",
			p.ID, p.Name, p.Age, p.Gender, p.AvgGlucoseLevel, p.BMI, p.Stroke, risk)
	}
	w.Flush()
}
