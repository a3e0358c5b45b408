package cache

import (
	"strconv"
)

const onlineUsersKey = "online_users"

// PresenceCache tracks which users currently hold a websocket connection.
// Purely advisory: it is written on register/unregister and consulted by
// nothing on the message path.
type PresenceCache struct {
	redis *RedisCache
}

func NewPresenceCache(redis *RedisCache) *PresenceCache {
	return &PresenceCache{redis: redis}
}

func (pc *PresenceCache) SetOnline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	return pc.redis.SetAdd(onlineUsersKey, userID)
}

func (pc *PresenceCache) SetOffline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	return pc.redis.SetRemove(onlineUsersKey, userID)
}

func (pc *PresenceCache) IsOnline(userID uint) bool {
	if pc == nil || pc.redis == nil {
		return false
	}
	return pc.redis.SetIsMember(onlineUsersKey, userID)
}

func (pc *PresenceCache) OnlineUsers() ([]uint, error) {
	if pc == nil || pc.redis == nil {
		return nil, nil
	}
	members, err := pc.redis.SetMembers(onlineUsersKey)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
