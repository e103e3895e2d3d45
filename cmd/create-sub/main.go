package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DallanL/nms-like-n-subscribe/pkg/types"
)

const (
	defaultHost    = "http://localhost:8001"
	defaultPostURL = "<post_url>"
)

var domainPattern = regexp.MustCompile(`^\d{10}\.com$`)

type createRequest struct {
	Domain   string `json:"domain"`
	Model    string `json:"model"`
	PostURL  string `json:"post_url"`
	User     string `json:"user,omitempty"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "create-sub",
		Short:         "Interactively create an NMS event subscription",
		Long:          "Prompts for subscription details and submits them to the subscription service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd)
		},
	}

	cmd.Flags().String("host", defaultHost, "base URL of the subscription service")
	cmd.Flags().String("post-url", defaultPostURL, "default callback URL offered at the prompt")
	_ = viper.BindPFlag("host", cmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("post_url", cmd.Flags().Lookup("post-url"))

	return cmd
}

func run(cmd *cobra.Command) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	for {
		req, err := collectInput(in, out)
		if err != nil {
			return err
		}
		if !confirmInput(in, out, req) {
			fmt.Fprintln(out, "Let's try again.")
			continue
		}
		return postSubscription(out, viper.GetString("host"), req)
	}
}

func collectInput(in *bufio.Reader, out io.Writer) (*createRequest, error) {
	model, err := promptModel(in, out)
	if err != nil {
		return nil, err
	}

	domain, err := promptDomain(in, out)
	if err != nil {
		return nil, err
	}

	postURL, err := prompt(in, out, fmt.Sprintf("Enter post_url (default: %s): ", viper.GetString("post_url")))
	if err != nil {
		return nil, err
	}
	if postURL == "" {
		postURL = viper.GetString("post_url")
	}

	user, err := prompt(in, out, "Enter user (optional, press Enter to skip): ")
	if err != nil {
		return nil, err
	}

	username := viper.GetString("nms_username")
	if username == "" {
		if username, err = prompt(in, out, "Enter API username: "); err != nil {
			return nil, err
		}
	}
	password := viper.GetString("nms_password")
	if password == "" {
		if password, err = prompt(in, out, "Enter API password: "); err != nil {
			return nil, err
		}
	}

	return &createRequest{
		Domain:   domain,
		Model:    model,
		PostURL:  postURL,
		User:     user,
		Username: username,
		Password: password,
	}, nil
}

func promptModel(in *bufio.Reader, out io.Writer) (string, error) {
	for {
		model, err := prompt(in, out, fmt.Sprintf("Enter model (default: %s): ", types.DefaultSubscriptionModel))
		if err != nil {
			return "", err
		}
		model = strings.ToLower(model)
		if model == "" {
			return string(types.DefaultSubscriptionModel), nil
		}
		if types.SubscriptionModel(model).Valid() {
			return model, nil
		}
		fmt.Fprintf(out, "Invalid model. Valid options are: %s\n", strings.Join(modelNames(), ", "))
	}
}

func promptDomain(in *bufio.Reader, out io.Writer) (string, error) {
	for {
		domain, err := prompt(in, out, "Enter domain (10-digit number followed by .com): ")
		if err != nil {
			return "", err
		}
		domain = strings.ToLower(domain)
		if domainPattern.MatchString(domain) {
			return domain, nil
		}
		fmt.Fprintln(out, "Invalid domain format. Example: 1234567890.com")
	}
}

func confirmInput(in *bufio.Reader, out io.Writer, req *createRequest) bool {
	fmt.Fprintln(out, "\nPlease confirm the following information:")
	fmt.Fprintf(out, "Model: %s\n", req.Model)
	fmt.Fprintf(out, "Domain: %s\n", req.Domain)
	fmt.Fprintf(out, "Post URL: %s\n", req.PostURL)
	user := req.User
	if user == "" {
		user = "None"
	}
	fmt.Fprintf(out, "User: %s\n", user)

	answer, err := prompt(in, out, "Is this information correct? (y/n): ")
	if err != nil {
		return false
	}
	return strings.ToLower(answer) == "y"
}

func postSubscription(out io.Writer, host string, req *createRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(host+"/create-subscription", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to create subscription: status %d: %s", resp.StatusCode, respBody)
	}

	fmt.Fprintln(out, "Subscription created successfully!")
	fmt.Fprintf(out, "Response: %s\n", respBody)
	return nil
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func modelNames() []string {
	names := make([]string, 0, len(types.SubscriptionModels()))
	for _, m := range types.SubscriptionModels() {
		names = append(names, string(m))
	}
	return names
}

func main() {
	// .env is a development convenience, missing file is fine
	_ = godotenv.Load()
	viper.SetEnvPrefix("CREATESUB")
	viper.AutomaticEnv()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
