package cmd

import (
	"fmt"

	"github.com/sidenote-app/sidenote/internal/notify/webpush"
	"github.com/spf13/cobra"
)

var generateKeysCmd = &cobra.Command{
	Use:   "generate-vapid-keys",
	Short: "Generate VAPID keys for web push notifications",
	Long: `Generate VAPID keys for web push notifications.

The keys are required for sending moderation digests to moderator
browsers. Add them to your configuration file under the webpush section.`,
	RunE: generateVAPIDKeys,
}

func init() {
	rootCmd.AddCommand(generateKeysCmd)
}

func generateVAPIDKeys(_ *cobra.Command, _ []string) error {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return fmt.Errorf("failed to generate VAPID keys: %w", err)
	}

	fmt.Println("Generated VAPID keys for web push notifications:")
	fmt.Println()
	fmt.Printf("Private Key: %s\n", privateKey)
	fmt.Printf("Public Key:  %s\n", publicKey)
	fmt.Println()
	fmt.Println("Add these to your configuration file:")
	fmt.Println()
	fmt.Println("webpush:")
	fmt.Println("  enabled: true")
	fmt.Println("  vapid_email: \"your-email@example.com\"")
	fmt.Printf("  private_key: \"%s\"\n", privateKey)
	fmt.Printf("  public_key: \"%s\"\n", publicKey)
	fmt.Println()
	fmt.Println("Keep the private key secret.")

	return nil
}
