// Package whatsapp 提供 WhatsApp 号码规范化、提醒链接与分享文本生成。
package whatsapp

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxCustomMessageLen 分享文本附加消息的最大字符数
const MaxCustomMessageLen = 500

var (
	ErrInvalidNumber        = errors.New("WhatsApp 号码格式无效（示例：+6281234567890）")
	ErrCustomMessageTooLong = errors.New("附加消息最多 500 个字符")
)

// 国际区号不以 0 开头，本地格式（如 0812…）需带区号填写
var numberPattern = regexp.MustCompile(`^\+[1-9]\d{9,14}$`)

// Normalize 只保留数字并加上 '+' 前缀。
// 空白输入返回空字符串。
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(raw) + 1)
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	return "+" + digits
}

// Validate 校验已规范化的号码
func Validate(number string) error {
	if !numberPattern.MatchString(number) {
		return ErrInvalidNumber
	}
	return nil
}

// NormalizeAndValidate 规范化后校验；空输入视为未填写，返回 ("", nil)
func NormalizeAndValidate(raw string) (string, error) {
	n := Normalize(raw)
	if n == "" {
		if strings.TrimSpace(raw) != "" {
			return "", ErrInvalidNumber
		}
		return "", nil
	}
	if err := Validate(n); err != nil {
		return "", err
	}
	return n, nil
}

// ReminderLink 生成 wa.me 提醒链接
func ReminderLink(number, name string) string {
	digits := strings.TrimPrefix(Normalize(number), "+")
	text := fmt.Sprintf("Assalamu'alaikum %s, ini pengingat untuk tilawah Anda.", name)
	return "https://wa.me/" + digits + "?text=" + encodeURIComponent(text)
}

// 与浏览器 encodeURIComponent 一致：空格为 %20，!'()* 不转义
var uriComponentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func encodeURIComponent(s string) string {
	return uriComponentReplacer.Replace(url.QueryEscape(s))
}

// ── 分享文本 ──

// Mark 分享文本中的完成标记
type Mark int

const (
	MarkNone Mark = iota
	MarkCompleted
	MarkMissed
)

// ShareEntry 分享文本中的一行
type ShareEntry struct {
	Name string
	Slot int
	Mark Mark
}

// ShareInput 分享文本输入
type ShareInput struct {
	GroupName     string
	PeriodNumber  int
	StartDate     time.Time
	EndDate       time.Time
	Entries       []ShareEntry
	CustomMessage string
}

// ShareText 按槽位分组生成可直接粘贴到群聊的进度文本。
// 同一槽位内保持 Entries 的原始顺序；空槽位不输出。
func ShareText(in ShareInput) (string, error) {
	custom := strings.TrimSpace(in.CustomMessage)
	if utf8.RuneCountInString(custom) > MaxCustomMessageLen {
		return "", ErrCustomMessageTooLong
	}

	bySlot := make(map[int][]ShareEntry)
	slots := make([]int, 0)
	for _, e := range in.Entries {
		if _, ok := bySlot[e.Slot]; !ok {
			slots = append(slots, e.Slot)
		}
		bySlot[e.Slot] = append(bySlot[e.Slot], e)
	}
	sort.Ints(slots)

	var b strings.Builder
	fmt.Fprintf(&b, "📖 *Grup Tilawah: %s*\n", in.GroupName)
	fmt.Fprintf(&b, "🗓️ Periode %d: %s - %s\n\n",
		in.PeriodNumber, in.StartDate.Format("2 Jan 2006"), in.EndDate.Format("2 Jan 2006"))

	for _, slot := range slots {
		fmt.Fprintf(&b, "*Juz %d:*\n", slot)
		for _, e := range bySlot[slot] {
			b.WriteString("- ")
			b.WriteString(e.Name)
			switch e.Mark {
			case MarkCompleted:
				b.WriteString(" 👑")
			case MarkMissed:
				b.WriteString(" 💔")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if custom != "" {
		b.WriteString("---\n")
		b.WriteString(custom)
	}
	return b.String(), nil
}
