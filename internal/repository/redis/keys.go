package redis

import "fmt"

// Ключи кеша, используемые движком викторин.

// JoinCodeKey — резервация кода подключения на время генерации,
// защищает от выдачи одного кода двум викторинам между проверкой и записью в БД.
func JoinCodeKey(code string) string {
	return fmt.Sprintf("quiz:join_code:%s", code)
}

// LeaderboardKey — кешированная сериализованная таблица лидеров завершенной викторины
func LeaderboardKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:leaderboard", quizID)
}
