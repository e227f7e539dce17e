package evaluator

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"
	"github.com/shopspring/decimal"
)

var nanosPerSecond = decimal.NewFromInt(int64(time.Second))

// Date is a point in time. Subtracting two dates gives seconds; adding or
// subtracting a Number shifts by seconds.
type Date struct {
	Time time.Time
}

func NewDate(t time.Time) *Date { return &Date{Time: t} }

func (d *Date) TypeString() string { return DATE_TYPE }
func (d *Date) Inspect() string    { return d.Time.Format(time.RFC3339) }

func (d *Date) Compare(other Value) Ordering {
	o, ok := other.(*Date)
	if !ok {
		return Unrelated
	}
	switch d.Time.Compare(o.Time) {
	case -1:
		return Ascending
	case 1:
		return Descending
	}
	return Same
}

func (d *Date) shift(seconds *Number) Value {
	if seconds.IsNaN() {
		return NaN
	}
	nanos := seconds.Value.Mul(nanosPerSecond).IntPart()
	return &Date{Time: d.Time.Add(time.Duration(nanos))}
}

func (d *Date) Add(other Value) Value {
	if n, ok := other.(*Number); ok {
		return d.shift(n)
	}
	return nil
}

func (d *Date) Subtract(other Value) Value {
	switch o := other.(type) {
	case *Number:
		if o.IsNaN() {
			return NaN
		}
		return d.shift(&Number{Value: o.Value.Neg()})
	case *Date:
		nanos := decimal.NewFromInt(int64(d.Time.Sub(o.Time)))
		return &Number{Value: nanos.Div(nanosPerSecond)}
	}
	return nil
}

func (d *Date) ValueForProperty(name string) Value {
	t := d.Time
	switch name {
	case "year":
		return NumberFromInt(int64(t.Year()))
	case "month":
		return NumberFromInt(int64(t.Month()))
	case "day":
		return NumberFromInt(int64(t.Day()))
	case "hour":
		return NumberFromInt(int64(t.Hour()))
	case "minute":
		return NumberFromInt(int64(t.Minute()))
	case "second":
		return NumberFromInt(int64(t.Second()))
	case "weekday":
		return NewString(t.Weekday().String())
	case "unix":
		return NumberFromInt(t.Unix())
	}
	return nil
}

// nowFunc is replaced in tests.
var nowFunc = time.Now

func builtinNow(args []Value) Value {
	return NewDate(nowFunc())
}

// builtinDate parses free-form date text, or converts Unix seconds.
func builtinDate(args []Value) Value {
	switch arg := args[0].(type) {
	case *Date:
		return arg
	case *Number:
		if arg.IsNaN() {
			return newArgumentError("date", "NaN is not a point in time")
		}
		return NewDate(time.Unix(0, 0).UTC().Add(time.Duration(arg.Value.Mul(nanosPerSecond).IntPart())))
	case *String:
		t, err := dateparse.ParseAny(arg.Value)
		if err != nil {
			return newArgumentError("date", err.Error())
		}
		return NewDate(t)
	}
	return newArgumentTypeError("date", "a String or Number", args[0])
}

// builtinFormatDate formats with a Go layout, optionally localized:
// formatDate(d, "2 January 2006", "de").
func builtinFormatDate(args []Value) Value {
	if err := checkArity("formatDate", args, 2, 3); err != nil {
		return err
	}
	d, ok := args[0].(*Date)
	if !ok {
		return newArgumentTypeError("formatDate", "a Date", args[0])
	}
	layout, err := argString("formatDate", args[1])
	if err != nil {
		return err
	}
	if len(args) == 2 {
		return NewString(d.Time.Format(layout))
	}
	localeName, err := argString("formatDate", args[2])
	if err != nil {
		return err
	}
	locale, found := getMondayLocale(localeName)
	if !found {
		return newArgumentError("formatDate", "unsupported locale '"+localeName+"'")
	}
	return NewString(monday.Format(d.Time, layout, locale))
}

// getMondayLocale maps a locale string such as "de", "de-CH" or "fr_CA" to
// a monday.Locale.
func getMondayLocale(locale string) (monday.Locale, bool) {
	locale = strings.ToLower(strings.ReplaceAll(locale, "-", "_"))

	localeMap := map[string]monday.Locale{
		"en":    monday.LocaleEnUS,
		"en_us": monday.LocaleEnUS,
		"en_gb": monday.LocaleEnGB,
		"de":    monday.LocaleDeDE,
		"de_de": monday.LocaleDeDE,
		"de_at": monday.LocaleDeDE,
		"de_ch": monday.LocaleDeDE,
		"fr":    monday.LocaleFrFR,
		"fr_fr": monday.LocaleFrFR,
		"fr_ca": monday.LocaleFrCA,
		"es":    monday.LocaleEsES,
		"es_es": monday.LocaleEsES,
		"it":    monday.LocaleItIT,
		"it_it": monday.LocaleItIT,
		"pt":    monday.LocalePtPT,
		"pt_br": monday.LocalePtBR,
		"nl":    monday.LocaleNlNL,
		"nl_be": monday.LocaleNlBE,
		"ru":    monday.LocaleRuRU,
		"pl":    monday.LocalePlPL,
		"cs":    monday.LocaleCsCZ,
		"da":    monday.LocaleDaDK,
		"fi":    monday.LocaleFiFI,
		"sv":    monday.LocaleSvSE,
		"nb":    monday.LocaleNbNO,
		"ja":    monday.LocaleJaJP,
		"zh":    monday.LocaleZhCN,
		"zh_tw": monday.LocaleZhTW,
		"ko":    monday.LocaleKoKR,
		"tr":    monday.LocaleTrTR,
		"uk":    monday.LocaleUkUA,
	}

	l, ok := localeMap[locale]
	return l, ok
}
