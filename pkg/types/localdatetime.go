package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// LocalDateTimeLayout формат сериализации LocalDateTime
const LocalDateTimeLayout = "2006-01-02T15:04:05"

// ErrInvalidLocalDateTime возвращается при некорректной строке даты-времени
var ErrInvalidLocalDateTime = errors.New("invalid local date-time format")

var localDateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// LocalDateTime "настенное" время без часового пояса: дата и время суток в том виде,
// в каком их видит пользователь. Внутри хранится в time.UTC только как контейнер полей,
// никакой конвертации между поясами не выполняется.
type LocalDateTime struct {
	t time.Time
}

// NewLocalDateTime собирает значение из полей
func NewLocalDateTime(year int, month time.Month, day, hour, minute int) LocalDateTime {
	return LocalDateTime{t: time.Date(year, month, day, hour, minute, 0, 0, time.UTC)}
}

// FromWallClock берёт поля даты и времени из t в его собственном часовом поясе.
// Смещение отбрасывается.
func FromWallClock(t time.Time) LocalDateTime {
	if t.IsZero() {
		return LocalDateTime{}
	}
	return LocalDateTime{t: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

// ParseLocalDateTime разбирает YYYY-MM-DDTHH:MM[:SS], YYYY-MM-DD HH:MM[:SS] или RFC3339.
// Для RFC3339 смещение отбрасывается, сохраняются поля "как написано".
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range localDateTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return FromWallClock(parsed), nil
		}
	}
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		return FromWallClock(parsed), nil
	}
	return LocalDateTime{}, fmt.Errorf("%w: %q", ErrInvalidLocalDateTime, s)
}

// IsZero возвращает true для неинициализированного значения
func (l LocalDateTime) IsZero() bool {
	return l.t.IsZero()
}

// Time возвращает поля в виде time.Time в поясе UTC
func (l LocalDateTime) Time() time.Time {
	return l.t
}

// Midnight возвращает начало календарного дня
func (l LocalDateTime) Midnight() LocalDateTime {
	y, m, d := l.t.Date()
	return LocalDateTime{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// At возвращает ту же дату с указанным временем суток
func (l LocalDateTime) At(ts TimeString) (LocalDateTime, error) {
	minutes, err := ts.Minutes()
	if err != nil {
		return LocalDateTime{}, err
	}
	return l.Midnight().Add(time.Duration(minutes) * time.Minute), nil
}

// SameDate проверяет совпадение календарных дат
func (l LocalDateTime) SameDate(other LocalDateTime) bool {
	y1, m1, d1 := l.t.Date()
	y2, m2, d2 := other.t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Add сдвигает значение на d
func (l LocalDateTime) Add(d time.Duration) LocalDateTime {
	return LocalDateTime{t: l.t.Add(d)}
}

// AddDays сдвигает дату на n календарных дней
func (l LocalDateTime) AddDays(n int) LocalDateTime {
	return LocalDateTime{t: l.t.AddDate(0, 0, n)}
}

// Sub возвращает l - other
func (l LocalDateTime) Sub(other LocalDateTime) time.Duration {
	return l.t.Sub(other.t)
}

// Before сообщает, что l строго раньше other
func (l LocalDateTime) Before(other LocalDateTime) bool {
	return l.t.Before(other.t)
}

// After сообщает, что l строго позже other
func (l LocalDateTime) After(other LocalDateTime) bool {
	return l.t.After(other.t)
}

// Equal сравнивает значения
func (l LocalDateTime) Equal(other LocalDateTime) bool {
	return l.t.Equal(other.t)
}

// DateString возвращает дату в формате YYYY-MM-DD
func (l LocalDateTime) DateString() string {
	return l.t.Format("2006-01-02")
}

// String возвращает значение в формате LocalDateTimeLayout
func (l LocalDateTime) String() string {
	if l.IsZero() {
		return ""
	}
	return l.t.Format(LocalDateTimeLayout)
}

// MarshalJSON реализует json.Marshaler
func (l LocalDateTime) MarshalJSON() ([]byte, error) {
	if l.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + l.String() + `"`), nil
}

// UnmarshalJSON реализует json.Unmarshaler
func (l *LocalDateTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*l = LocalDateTime{}
		return nil
	}
	s = strings.Trim(s, `"`)
	parsed, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Value реализует driver.Valuer. Передаётся строкой, чтобы БД не применяла пояс сессии.
func (l LocalDateTime) Value() (driver.Value, error) {
	if l.IsZero() {
		return nil, nil
	}
	return l.t.Format("2006-01-02 15:04:05"), nil
}

// Scan реализует sql.Scanner для TIMESTAMP WITHOUT TIME ZONE
func (l *LocalDateTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = LocalDateTime{}
		return nil
	case time.Time:
		*l = FromWallClock(v)
		return nil
	case []byte:
		return l.scanString(string(v))
	case string:
		return l.scanString(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidLocalDateTime, src)
	}
}

func (l *LocalDateTime) scanString(s string) error {
	parsed, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
