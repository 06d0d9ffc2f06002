package redisstore

import "github.com/redis/go-redis/v9"

// script results shared by the conditional updates
const (
	resultNotFound   int64 = 0
	resultNotUpdated int64 = 1
	resultUpdated    int64 = 2
)

// KEYS[1] code, ARGV[1] now
const markCodeUsedScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
if redis.call("HEXISTS", KEYS[1], "used_at") == 1 then
  return 1
end
local expires = tonumber(redis.call("HGET", KEYS[1], "expires_at"))
if expires <= tonumber(ARGV[1]) then
  return 1
end
redis.call("HSET", KEYS[1], "used_at", ARGV[1])
return 2
`

var markCodeUsedLua = redis.NewScript(markCodeUsedScript)

// KEYS[1] record, KEYS[2] new access index
// ARGV[1] now, ARGV[2] access token, ARGV[3] access expiry, ARGV[4] access
// index prefix, ARGV[5] record id, ARGV[6] access index expiry
const rotateAccessScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
if redis.call("HEXISTS", KEYS[1], "revoked_at") == 1 then
  return 1
end
local now = tonumber(ARGV[1])
local refresh_expires = tonumber(redis.call("HGET", KEYS[1], "refresh_token_expires_at"))
if refresh_expires <= now then
  return 1
end
local previous = redis.call("HGET", KEYS[1], "access_token")
if previous then
  redis.call("DEL", ARGV[4] .. previous)
end
redis.call("HSET", KEYS[1],
  "access_token", ARGV[2],
  "access_token_expires_at", ARGV[3],
  "last_used_at", ARGV[1],
  "updated_at", ARGV[1])
redis.call("SET", KEYS[2], ARGV[5])
redis.call("PEXPIREAT", KEYS[2], ARGV[6])
return 2
`

var rotateAccessLua = redis.NewScript(rotateAccessScript)

// KEYS[1] record, ARGV[1] now
const touchRecordScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "last_used_at", ARGV[1])
return 2
`

var touchRecordLua = redis.NewScript(touchRecordScript)

// KEYS[1] refresh index, ARGV[1] now, ARGV[2] record key prefix
// returns the record id or false
const revokeRecordScript = `
local id = redis.call("GET", KEYS[1])
if not id then
  return false
end
local record = ARGV[2] .. id
if redis.call("EXISTS", record) == 0 then
  return false
end
if redis.call("HEXISTS", record, "revoked_at") == 0 then
  redis.call("HSET", record, "revoked_at", ARGV[1], "updated_at", ARGV[1])
end
return id
`

var revokeRecordLua = redis.NewScript(revokeRecordScript)

// KEYS[1] user record set, ARGV[1] now, ARGV[2] record key prefix
const revokeUserRecordsScript = `
local ids = redis.call("SMEMBERS", KEYS[1])
local revoked = 0
for _, id in ipairs(ids) do
  local record = ARGV[2] .. id
  if redis.call("EXISTS", record) == 1 then
    if redis.call("HEXISTS", record, "revoked_at") == 0 then
      redis.call("HSET", record, "revoked_at", ARGV[1], "updated_at", ARGV[1])
      revoked = revoked + 1
    end
  else
    redis.call("SREM", KEYS[1], id)
  end
end
return revoked
`

var revokeUserRecordsLua = redis.NewScript(revokeUserRecordsScript)

// KEYS[1] profile, KEYS[2] email index, KEYS[3] username index, KEYS[4] users
// ARGV id, email, username, avatar_url, created_at
const createUserScript = `
if redis.call("EXISTS", KEYS[1]) == 1 or redis.call("EXISTS", KEYS[2]) == 1 or redis.call("EXISTS", KEYS[3]) == 1 then
  return 1
end
redis.call("HSET", KEYS[1],
  "id", ARGV[1],
  "email", ARGV[2],
  "username", ARGV[3],
  "avatar_url", ARGV[4],
  "created_at", ARGV[5])
redis.call("SET", KEYS[2], ARGV[1])
redis.call("SET", KEYS[3], ARGV[1])
redis.call("SADD", KEYS[4], ARGV[1])
return 2
`

var createUserLua = redis.NewScript(createUserScript)
