package evaluator

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"golang.org/x/text/unicode/norm"
)

// parseLocale parses an optional BCP 47 locale argument at args[index].
func parseLocale(function string, args []Value, index int) (language.Tag, *Error) {
	if len(args) <= index {
		return language.Und, nil
	}
	name, err := argString(function, args[index])
	if err != nil {
		return language.Und, err
	}
	tag, perr := language.Parse(name)
	if perr != nil {
		return language.Und, newArgumentError(function, "invalid locale '"+name+"'")
	}
	return tag, nil
}

// caseNative implements upper(s[, locale]), lower and title. The locale
// matters for languages such as Turkish.
func caseNative(name string) NativeFunction {
	return func(args []Value) Value {
		if err := checkArity(name, args, 1, 2); err != nil {
			return err
		}
		s, err := argString(name, args[0])
		if err != nil {
			return err
		}
		tag, err := parseLocale(name, args, 1)
		if err != nil {
			return err
		}

		var caser cases.Caser
		switch name {
		case "upper":
			caser = cases.Upper(tag)
		case "lower":
			caser = cases.Lower(tag)
		default:
			caser = cases.Title(tag)
		}
		return NewString(caser.String(s))
	}
}

// builtinNormalize applies a Unicode normal form, NFC by default.
func builtinNormalize(args []Value) Value {
	if err := checkArity("normalize", args, 1, 2); err != nil {
		return err
	}
	s, err := argString("normalize", args[0])
	if err != nil {
		return err
	}
	form := "NFC"
	if len(args) == 2 {
		if form, err = argString("normalize", args[1]); err != nil {
			return err
		}
	}

	forms := map[string]norm.Form{"NFC": norm.NFC, "NFD": norm.NFD, "NFKC": norm.NFKC, "NFKD": norm.NFKD}
	f, ok := forms[form]
	if !ok {
		return newArgumentError("normalize", "unknown form '"+form+"', expected NFC, NFD, NFKC or NFKD")
	}
	return NewString(f.String(s))
}

// builtinFormatNumber formats with locale grouping and decimal separators:
// formatNumber(1234.5, "de") is "1.234,5".
func builtinFormatNumber(args []Value) Value {
	if err := checkArity("formatNumber", args, 1, 2); err != nil {
		return err
	}
	n, err := argNumber("formatNumber", args[0])
	if err != nil {
		return err
	}
	if n.IsNaN() {
		return NewString(n.String())
	}
	tag := language.English
	if len(args) == 2 {
		if tag, err = parseLocale("formatNumber", args, 1); err != nil {
			return err
		}
	}
	p := message.NewPrinter(tag)
	return NewString(p.Sprintf("%v", number.Decimal(n.Value.InexactFloat64(), number.MaxFractionDigits(16))))
}

// builtinMarkdown renders GitHub flavoured markdown to HTML.
func builtinMarkdown(args []Value) Value {
	src, err := argString("markdown", args[0])
	if err != nil {
		return err
	}
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if cerr := md.Convert([]byte(src), &buf); cerr != nil {
		return newArgumentError("markdown", cerr.Error())
	}
	return NewString(buf.String())
}
