package redisstore

import (
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Guard is the existence check a step makes on its key before anything is written.
type Guard string

const (
	GuardAny     Guard = "any"
	GuardPresent Guard = "present"
	GuardAbsent  Guard = "absent"
)

// Effect tells later steps of the same transaction whether the key exists after this one.
type Effect string

const (
	EffectKeep   Effect = "keep"
	EffectSet    Effect = "set"
	EffectRemove Effect = "remove"
)

// Step is one entity write: a guarded key plus the commands that change it.
type Step struct {
	Key    string
	Guard  Guard
	Effect Effect
	Cmds   [][]string
}

// Tx buffers steps until Commit sends them to Redis as one script run.
// The script checks every guard before the first write, so a failed guard
// leaves the data untouched.
type Tx struct {
	steps []Step
}

func (tx *Tx) Add(s Step) { tx.steps = append(tx.steps, s) }

func (tx *Tx) Len() int { return len(tx.steps) }

// args flattens the steps as: count, then per step guard, key, effect,
// command count, and per command its arity followed by its words.
func (tx *Tx) args() []any {
	out := []any{strconv.Itoa(len(tx.steps))}
	for _, s := range tx.steps {
		out = append(out, string(s.Guard), s.Key, string(s.Effect), strconv.Itoa(len(s.Cmds)))
		for _, cmd := range s.Cmds {
			out = append(out, strconv.Itoa(len(cmd)))
			for _, w := range cmd {
				out = append(out, w)
			}
		}
	}
	return out
}

const (
	errCodeExists  = "UOW_EXISTS"
	errCodeMissing = "UOW_MISSING"
)

var applyScript = redis.NewScript(`
local i = 1
local n = tonumber(ARGV[i]); i = i + 1
local known = {}
local steps = {}
for s = 1, n do
  local guard, key, effect = ARGV[i], ARGV[i + 1], ARGV[i + 2]
  local ncmds = tonumber(ARGV[i + 3]); i = i + 4
  local present = known[key]
  if present == nil then present = redis.call('EXISTS', key) == 1 end
  if guard == 'absent' and present then
    return redis.error_reply('UOW_EXISTS ' .. key)
  end
  if guard == 'present' and not present then
    return redis.error_reply('UOW_MISSING ' .. key)
  end
  if effect == 'set' then known[key] = true elseif effect == 'remove' then known[key] = false end
  local cmds = {}
  for c = 1, ncmds do
    local nargs = tonumber(ARGV[i]); i = i + 1
    local cmd = {}
    for a = 1, nargs do cmd[a] = ARGV[i]; i = i + 1 end
    cmds[c] = cmd
  end
  steps[s] = cmds
end
for s = 1, n do
  for _, cmd in ipairs(steps[s]) do redis.call(unpack(cmd)) end
end
return n
`)
