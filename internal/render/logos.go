package render

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/lumipallolabs/walletmap/internal/logging"
	"github.com/lumipallolabs/walletmap/internal/model"
)

// maxInlineLogoSize caps the size of a logo file embedded as a data URI
const maxInlineLogoSize = 1 << 20

// InlineLogos returns a copy of the tree in which logo references that name
// image files under dir are replaced by data URIs. Remote URLs, data URIs,
// references leaving dir and files that are missing, too large or not images
// are left unchanged.
func InlineLogos(root *model.Node, dir string) *model.Node {
	out := root.Clone()
	logos, err := os.OpenRoot(dir)
	if err != nil {
		logging.Render.Printf("logo directory not usable: %v", err)
		return out
	}
	defer logos.Close()

	cache := make(map[string]string)
	model.Walk(out, func(n *model.Node, _ int) {
		if n.LogoURL == "" || isRemote(n.LogoURL) {
			return
		}
		uri, ok := cache[n.LogoURL]
		if !ok {
			ref := filepath.FromSlash(n.LogoURL)
			if filepath.IsLocal(ref) {
				uri = dataURI(logos, ref)
			} else {
				logging.Render.Printf("logo %s not inlined: outside %s", n.LogoURL, dir)
			}
			cache[n.LogoURL] = uri
		}
		if uri != "" {
			n.LogoURL = uri
		}
	})
	return out
}

func isRemote(ref string) bool {
	return strings.Contains(ref, "://") || strings.HasPrefix(ref, "data:")
}

// dataURI reads name below logos and encodes it as a data URI, or returns ""
// when the file cannot be used as a logo. Symlinks pointing out of the
// directory fail to resolve.
func dataURI(logos *os.Root, name string) string {
	info, err := logos.Stat(name)
	if err != nil || info.IsDir() || info.Size() > maxInlineLogoSize {
		logging.Render.Printf("logo %s not inlined: missing, directory or too large", name)
		return ""
	}

	data, err := logos.ReadFile(name)
	if err != nil {
		logging.Render.Printf("logo %s not inlined: %v", name, err)
		return ""
	}

	mtype := mimetype.Detect(data)
	if !IsImage(mtype) {
		logging.Render.Printf("logo %s not inlined: detected %s", name, mtype.String())
		return ""
	}

	media := strings.SplitN(mtype.String(), ";", 2)[0]
	return "data:" + media + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsImage reports whether a detected media type is an image format
func IsImage(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}
