package achievements

import "github.com/aimd54/hangul-path/internal/models"

// Achievement identifiers.
const (
	FirstLetter   = "first_letter"
	FirstWord     = "first_word"
	FirstSentence = "first_sentence"
	Streak3       = "streak_3"
	Streak7       = "streak_7"
	Streak30      = "streak_30"
	ProfilePhoto  = "profile_photo"
	FirstChat     = "first_chat"
)

var catalog = []models.Achievement{
	{ID: FirstLetter, TitleAR: "أول حرف", TitleKO: "첫 글자", Icon: "🔤", Points: 10},
	{ID: FirstWord, TitleAR: "أول كلمة", TitleKO: "첫 단어", Icon: "📖", Points: 20},
	{ID: FirstSentence, TitleAR: "أول جملة", TitleKO: "첫 문장", Icon: "✍️", Points: 30},
	{ID: Streak3, TitleAR: "3 أيام متتالية", TitleKO: "3일 연속", Icon: "🔥", Points: 30},
	{ID: Streak7, TitleAR: "أسبوع كامل", TitleKO: "일주일 연속", Icon: "⭐", Points: 70},
	{ID: Streak30, TitleAR: "شهر من التعلم", TitleKO: "한 달 연속", Icon: "🏆", Points: 300},
	{ID: ProfilePhoto, TitleAR: "صورة شخصية", TitleKO: "프로필 사진", Icon: "📷", Points: 5},
	{ID: FirstChat, TitleAR: "أول محادثة", TitleKO: "첫 대화", Icon: "💬", Points: 15},
}

var catalogByID = func() map[string]models.Achievement {
	m := make(map[string]models.Achievement, len(catalog))
	for _, a := range catalog {
		m[a.ID] = a
	}
	return m
}()

// streakMilestones maps streak lengths to the achievement they unlock, shortest first.
var streakMilestones = []struct {
	days int
	id   string
}{
	{3, Streak3},
	{7, Streak7},
	{30, Streak30},
}

// clientUnlockable lists the achievements earned by lesson content, which only the client observes.
// Streak, profile photo and chat achievements are derived by the server.
var clientUnlockable = map[string]bool{
	FirstLetter:   true,
	FirstWord:     true,
	FirstSentence: true,
}

// ClientUnlockable reports whether clients may unlock id directly.
func ClientUnlockable(id string) bool {
	return clientUnlockable[id]
}

// All returns a copy of the catalog in display order.
func All() []models.Achievement {
	out := make([]models.Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds an achievement by id.
func Lookup(id string) (models.Achievement, bool) {
	a, ok := catalogByID[id]
	return a, ok
}
