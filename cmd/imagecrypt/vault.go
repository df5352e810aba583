// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/imagecrypt/internal/locate"
	"github.com/pdiddy/imagecrypt/internal/secrets"
	"github.com/pdiddy/imagecrypt/internal/vault"
	"github.com/pdiddy/imagecrypt/pkg/types"
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Lock images into a password-gated vault and get them back",
	Long: `Each vault is opened by its own password. Locked images are stored encoded in
a local SQLite database and can be listed, unlocked to a file, or deleted.

The password is read from --password, then IMAGECRYPT_PASSWORD, then
.secrets/vault-password.`,
}

var vaultCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a vault opened by the given password",
	Args:  cobra.NoArgs,
	RunE:  runVaultCreate,
}

var vaultLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Open the vault and show when it was last opened",
	Args:  cobra.NoArgs,
	RunE:  runVaultLogin,
}

var vaultLockCmd = &cobra.Command{
	Use:   "lock [path]",
	Short: "Lock an image file into the vault",
	Long: `Locks the image at path, or with --find, the image picked from a locate search.

  imagecrypt vault lock ~/Pictures/beach.png
  imagecrypt vault lock --find "vacaton 2020" --pick 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVaultLock,
}

var vaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the images in the vault",
	Args:  cobra.NoArgs,
	RunE:  runVaultList,
}

var vaultUnlockCmd = &cobra.Command{
	Use:   "unlock <id>...",
	Short: "Decode images and write them out",
	Long: `Writes one image as a plain file and several as a ZIP archive. The output
defaults to the image's own file name, or images.zip for several.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVaultUnlock,
}

var vaultDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete images from the vault",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runVaultDelete,
}

func init() {
	vaultCmd.PersistentFlags().String("db", "", "vault database file (default <config dir>/imagecrypt/imagecrypt.db)")
	vaultCmd.PersistentFlags().String("password", "", "vault password")

	vaultCreateCmd.Flags().String("name", "", "vault name (required)")
	_ = vaultCreateCmd.MarkFlagRequired("name")

	vaultLockCmd.Flags().String("name", "", "name to store the image under (default: file name)")
	vaultLockCmd.Flags().String("find", "", "locate the image by approximate name instead of a path")
	vaultLockCmd.Flags().Int("pick", 1, "which --find match to lock, counting from 1")
	vaultLockCmd.Flags().Bool("remove-original", false, "delete the source file after locking")

	vaultListCmd.Flags().Bool("json", false, "print images as JSON")

	vaultUnlockCmd.Flags().StringP("out", "o", "", "output file")

	vaultCmd.AddCommand(vaultCreateCmd, vaultLoginCmd, vaultLockCmd, vaultListCmd, vaultUnlockCmd, vaultDeleteCmd)
	rootCmd.AddCommand(vaultCmd)
}

// openStore opens the vault database named by --db or vault.db_path.
func openStore(cmd *cobra.Command) (*vault.Store, error) {
	cfg := types.VaultConfig{DBPath: viper.GetString("vault.db_path")}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DBPath = db
	}
	return vault.Open(cfg)
}

// password resolves the vault password from the flag, the environment, or
// the secrets directory.
func password(cmd *cobra.Command) (string, error) {
	flag, _ := cmd.Flags().GetString("password")
	pw := loadedSecrets.Resolve(secrets.VaultPassword, flag, viper.GetString("password"))
	if pw == "" {
		return "", fmt.Errorf("no vault password: use --password, IMAGECRYPT_PASSWORD or .secrets/%s", secrets.VaultPassword)
	}
	return pw, nil
}

// openSession opens the store and logs into the vault for pw.
func openSession(cmd *cobra.Command) (*vault.Store, types.Session, error) {
	pw, err := password(cmd)
	if err != nil {
		return nil, types.Session{}, err
	}
	store, err := openStore(cmd)
	if err != nil {
		return nil, types.Session{}, err
	}
	session, err := store.Login(cmd.Context(), pw)
	if err != nil {
		store.Close()
		return nil, types.Session{}, err
	}
	return store, session, nil
}

func runVaultCreate(cmd *cobra.Command, args []string) error {
	pw, err := password(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	name, _ := cmd.Flags().GetString("name")
	v, err := store.CreateVault(cmd.Context(), name, pw)
	if errors.Is(err, vault.ErrPasswordInUse) {
		return fmt.Errorf("that password already opens another vault; choose a different one")
	}
	if errors.Is(err, vault.ErrPasswordTooShort) {
		return fmt.Errorf("vault passwords need at least %d characters; choose a longer one", vault.MinPasswordLength)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created vault %q (id %d) in %s\n", v.Name, v.ID, store.Path())
	return nil
}

func runVaultLogin(cmd *cobra.Command, args []string) error {
	store, session, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Opened vault %q\n", session.Vault.Name)
	if session.PreviousLogin.IsZero() {
		fmt.Fprintln(w, "First login.")
	} else {
		fmt.Fprintf(w, "Last login: %s (%s)\n",
			session.PreviousLogin.Local().Format(time.DateTime), humanize.Time(session.PreviousLogin))
	}
	return nil
}

func runVaultLock(cmd *cobra.Command, args []string) error {
	path, err := lockSource(cmd, args)
	if err != nil {
		return err
	}

	store, session, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	name, _ := cmd.Flags().GetString("name")
	img, err := store.LockImage(cmd.Context(), session.Vault.ID, path, name)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Locked %s as %q (id %d, %s)\n", path, img.Name, img.ID, humanize.Bytes(uint64(img.Size)))

	if remove, _ := cmd.Flags().GetBool("remove-original"); remove {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing original: %w", err)
		}
		fmt.Fprintf(w, "Removed %s\n", path)
	}
	return nil
}

// lockSource returns the file to lock: the path argument, or the --pick'th
// match of a --find search.
func lockSource(cmd *cobra.Command, args []string) (string, error) {
	query, _ := cmd.Flags().GetString("find")
	switch {
	case len(args) == 1 && query != "":
		return "", fmt.Errorf("give either a path or --find, not both")
	case len(args) == 1:
		return args[0], nil
	case strings.TrimSpace(query) == "":
		return "", fmt.Errorf("a path or --find query is required")
	}

	var cfg types.LocateConfig
	if err := viper.UnmarshalKey("locate", &cfg); err != nil {
		return "", fmt.Errorf("reading locate config: %w", err)
	}
	paths, err := locate.Locate(cmd.Context(), query, cfg)
	if err != nil {
		return "", fmt.Errorf("locating %q: %w", query, err)
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("no images matching %q found", query)
	}

	pick, _ := cmd.Flags().GetInt("pick")
	if pick < 1 || pick > len(paths) {
		return "", fmt.Errorf("--pick %d out of range: %d matches for %q", pick, len(paths), query)
	}
	return paths[pick-1], nil
}

func runVaultList(cmd *cobra.Command, args []string) error {
	store, session, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	images, err := store.ListImages(cmd.Context(), session.Vault.ID)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if images == nil {
			images = []types.Image{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(images)
	}

	if len(images) == 0 {
		fmt.Fprintf(w, "Vault %q is empty.\n", session.Vault.Name)
		return nil
	}
	rows := make([][]string, 0, len(images))
	for _, img := range images {
		accessed := "never"
		if !img.LastAccessed.IsZero() {
			accessed = humanize.Time(img.LastAccessed)
		}
		rows = append(rows, []string{
			strconv.FormatInt(img.ID, 10),
			img.Name,
			humanize.Bytes(uint64(img.Size)),
			humanize.Time(img.CreatedAt),
			accessed,
		})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "Name", "Size", "Locked", "Last unlocked"}, rows, 0, 2))
	return nil
}

func runVaultUnlock(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	store, session, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	unlocked := make([]vault.Unlocked, 0, len(ids))
	for _, id := range ids {
		u, err := store.UnlockImage(cmd.Context(), session.Vault.ID, id)
		if err != nil {
			return err
		}
		unlocked = append(unlocked, u)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = "images.zip"
		if len(unlocked) == 1 {
			out = unlocked[0].FileName()
		}
	}
	if err := vault.Save(out, unlocked); err != nil {
		return err
	}
	abs, _ := filepath.Abs(out)
	fmt.Fprintf(cmd.OutOrStdout(), "Unlocked %d image(s) to %s\n", len(unlocked), abs)
	return nil
}

func runVaultDelete(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	store, session, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, id := range ids {
		if err := store.DeleteImage(cmd.Context(), session.Vault.ID, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted image %d\n", id)
	}
	return nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid image id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
