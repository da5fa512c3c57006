package emit

import (
	"io"
	"strings"

	"github.com/jmgilman/go/errors"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// Output charsets.
const (
	CharsetUTF8 = "utf-8"
	CharsetGBK  = "gbk"
)

// encodeTo writes s to w in the given charset.
func encodeTo(w io.Writer, s, charset string) error {
	switch strings.ToLower(charset) {
	case "", CharsetUTF8:
		_, err := io.WriteString(w, s)
		return err
	case CharsetGBK:
		tw := transform.NewWriter(w, simplifiedchinese.GBK.NewEncoder())
		if _, err := io.WriteString(tw, s); err != nil {
			return errors.Wrap(err, errors.CodeInvalidInput, "could not encode the output as GBK")
		}
		return tw.Close()
	}
	return errors.Newf(errors.CodeInvalidConfig, "unsupported charset %q", charset)
}
