package users

import (
	"context"
	"strconv"

	"estate-backend/internal/middleware"
)

// destroySessions removes all sessions for a user: each session:<sid> key and
// the user_sessions:<id> set maintained at login.
func (s *Service) destroySessions(ctx context.Context, userID uint) {
	if s.Rdb == nil || userID == 0 {
		return
	}
	key := middleware.UserSessionsPrefix + strconv.FormatUint(uint64(userID), 10)
	sessionIDs, err := s.Rdb.SMembers(ctx, key).Result()
	if err != nil || len(sessionIDs) == 0 {
		s.Rdb.Del(ctx, key)
		return
	}
	for _, sid := range sessionIDs {
		s.Rdb.Del(ctx, middleware.SessionRedisPrefix+sid)
	}
	s.Rdb.Del(ctx, key)
}
