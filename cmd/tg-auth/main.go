package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tgwrap "github.com/blockedby/tg-grabber/internal/telegram"
	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/celestix/gotgproto/storage"
	"github.com/glebarez/sqlite"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth/qrlogin"
	"github.com/gotd/td/tg"
	"github.com/joho/godotenv"
	"github.com/mdp/qrterminal/v3"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("=== telegram auth tool ===")
	fmt.Println("generates the session string the grabber uses as TG_SESSION_STRING")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	apiID, apiHash := getAPICredentials(reader)

	sessionDB := os.Getenv("SESSION_DB")
	if sessionDB == "" {
		sessionDB = "grabber_session.db"
	}

	fmt.Println("choose authentication method:")
	fmt.Println("  1. scan QR code with the telegram app (recommended)")
	fmt.Println("  2. phone number (sms/code)")
	fmt.Print("\nenter choice [1]: ")

	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(choice)

	var client *gotgproto.Client
	var err error

	if choice == "2" {
		client, err = authWithPhone(apiID, apiHash, sessionDB, reader)
	} else {
		client, err = authWithQR(apiID, apiHash, sessionDB)
	}

	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	defer client.Stop()

	sessionString, err := client.ExportStringSession()
	if err != nil {
		fmt.Printf("error exporting session: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n✓ authentication successful!")
	fmt.Printf("logged in as: @%s\n", client.Self.Username)
	fmt.Println("\nyour session string:")
	fmt.Println("---")
	fmt.Println(sessionString)
	fmt.Println("---")
	fmt.Println("\nadd this to your .env file as TG_SESSION_STRING")
	fmt.Println("\n⚠️  keep this secret! it provides full access to your telegram account")
}

// getAPICredentials reads API ID and Hash from env or prompts the user.
func getAPICredentials(reader *bufio.Reader) (int, string) {
	apiIDStr := os.Getenv("TG_API_ID")
	apiHash := os.Getenv("TG_API_HASH")

	if apiIDStr == "" {
		fmt.Print("enter your api_id (from https://my.telegram.org): ")
		apiIDStr, _ = reader.ReadString('\n')
		apiIDStr = strings.TrimSpace(apiIDStr)
	}
	if apiHash == "" {
		fmt.Print("enter your api_hash: ")
		apiHash, _ = reader.ReadString('\n')
		apiHash = strings.TrimSpace(apiHash)
	}

	apiID, err := strconv.Atoi(apiIDStr)
	if err != nil {
		fmt.Printf("error: invalid api_id: %v\n", err)
		os.Exit(1)
	}

	return apiID, apiHash
}

// authWithPhone authenticates with a phone number, gotgproto prompts for
// the confirmation code interactively.
func authWithPhone(apiID int, apiHash, sessionDB string, reader *bufio.Reader) (*gotgproto.Client, error) {
	fmt.Print("enter your phone number (with country code, e.g. +1234567890): ")
	phone, _ := reader.ReadString('\n')
	phone = strings.TrimSpace(phone)

	fmt.Println("\nauthenticating... (check telegram for code)")

	return gotgproto.NewClient(
		apiID,
		apiHash,
		gotgproto.ClientTypePhone(phone),
		&gotgproto.ClientOpts{
			Session:          sessionMaker.SqlSession(sqlite.Open(sessionDB)),
			DisableCopyright: true,
		},
	)
}

// authWithQR runs the QR login flow on a raw gotd client, stores the
// captured session in the sqlite session database, and reopens it with
// gotgproto so the string session can be exported.
func authWithQR(apiID int, apiHash, sessionDB string) (*gotgproto.Client, error) {
	memStorage := &session.StorageMemory{}
	dispatcher := tg.NewUpdateDispatcher()

	raw := telegram.NewClient(apiID, apiHash, telegram.Options{
		SessionStorage: memStorage,
		UpdateHandler:  &dispatcher,
	})

	var sessionData *session.Data

	ctx := context.Background()
	err := raw.Run(ctx, func(ctx context.Context) error {
		loggedIn := qrlogin.OnLoginToken(&dispatcher)

		_, authErr := raw.QR().Auth(ctx, loggedIn, func(_ context.Context, token qrlogin.Token) error {
			fmt.Println("\nscan this QR code with the telegram app (Settings → Devices → Link Desktop Device):")
			fmt.Println()
			qrterminal.GenerateHalfBlock(token.URL(), qrterminal.L, os.Stdout)
			return nil
		})
		if authErr != nil {
			return authErr
		}

		loader := session.Loader{Storage: memStorage}
		var loadErr error
		sessionData, loadErr = loader.Load(ctx)
		return loadErr
	})
	if err != nil {
		return nil, fmt.Errorf("qr auth flow: %w", err)
	}
	if sessionData == nil {
		return nil, fmt.Errorf("no session data after qr auth")
	}

	if err := saveSession(sessionDB, sessionData); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return gotgproto.NewClient(
		apiID,
		apiHash,
		gotgproto.ClientTypePhone(""), // empty = use stored session
		&gotgproto.ClientOpts{
			Session:          sessionMaker.SqlSession(sqlite.Open(sessionDB)),
			DisableCopyright: true,
		},
	)
}

func saveSession(sessionDB string, data *session.Data) error {
	sess, err := tgwrap.ConvertSession(data)
	if err != nil {
		return err
	}

	db, err := gorm.Open(sqlite.Open(sessionDB), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("open session database: %w", err)
	}
	if err := db.AutoMigrate(&storage.Session{}); err != nil {
		return fmt.Errorf("migrate session table: %w", err)
	}

	return db.Save(sess).Error
}
