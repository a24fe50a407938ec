package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kaktotak00p/notes/internal/client/models"
	"github.com/Kaktotak00p/notes/internal/common"
)

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

// maxAvatarSize bounds uploads.
const maxAvatarSize = 5 << 20

func (a *App) ShowProfile(_ context.Context, _ []string) error {
	p, err := a.profile.Get()
	if errors.Is(err, common.ErrNotFound) {
		printlnFn("No profile yet. Use 'setprofile' to create one.")
		return nil
	}
	if err != nil {
		return err
	}

	printlnFn("Name:    ", orDash(p.FullName))
	printlnFn("Username:", orDash(p.Username))
	printlnFn("Website: ", orDash(p.Website))
	printlnFn("Avatar:  ", orDash(p.AvatarURL))
	if p.UpdatedAt != nil {
		printlnFn("Updated: ", p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// SetProfile handles "setprofile <name|username|website> <value>".
func (a *App) SetProfile(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	value := strings.Join(args[1:], " ")

	var patch models.ProfilePatch
	switch args[0] {
	case "name":
		patch.FullName = &value
	case "username":
		patch.Username = &value
	case "website":
		patch.Website = &value
	default:
		return errUsage
	}

	if _, err := a.profile.Save(ctx, patch); err != nil {
		return err
	}
	printlnFn("Profile saved")
	return nil
}

func (a *App) SetAvatar(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	data, err := readFile(args[0])
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%s is empty", args[0])
	}
	if len(data) > maxAvatarSize {
		return fmt.Errorf("%s is larger than %d bytes", args[0], maxAvatarSize)
	}

	p, err := a.profile.UploadAvatar(ctx, filepath.Base(args[0]), data, http.DetectContentType(data))
	if err != nil {
		return err
	}
	printlnFn("Avatar stored at", orDash(p.AvatarURL))
	return nil
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
