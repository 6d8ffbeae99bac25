package workflow

import (
	log "github.com/sirupsen/logrus"
	"github.com/warriorguo/oozie/utils"
)

const (
	DefaultEndName  = "end"
	DefaultKillName = "kill"

	// KillMessage is the message of kill nodes created by Repair.
	KillMessage = "Map/Reduce failed, error message[${wf:errorMessage(wf:lastErrorNode())}]"
)

/**
 * Repair adds the structural pieces a workflow is missing and moves misplaced
 * ones, so that Validate can pass. It never removes or renames nodes the
 * caller added, and running it on a repaired workflow changes nothing.
 *
 *  1. a start pointing at the first action is added when there is none
 *  2. the existing end and kill names (or "end" and "kill") become the
 *     defaults of generated transitions
 *  3. every action gets its missing ok/error and has them as its last two
 *     children, ok first
 *  4. every referenced but undefined node is created as an end when some ok
 *     points at it, else as a kill when some error points at it
 *  5. a single start is moved first and a single end is moved last
 */
func (wf *Workflow) Repair() {
	actions := wf.ChildrenOfTag(TagAction)

	if wf.CountOfTag(TagStart) < 1 && len(actions) > 0 {
		wf.AppendStart(actions[0].Name())
	}

	endName := DefaultEndName
	if end := wf.FirstOfTag(TagEnd); end != nil && end.Name() != "" {
		endName = end.Name()
	}
	killName := DefaultKillName
	if kill := wf.FirstOfTag(TagKill); kill != nil && kill.Name() != "" {
		killName = kill.Name()
	}

	for _, action := range actions {
		repairTransitions(action, endName, killName)
	}

	wf.createMissingTargets(endName, killName)

	if starts := wf.ChildrenOfTag(TagStart); len(starts) == 1 && wf.Child(0) != starts[0] {
		wf.Remove(starts[0])
		wf.Insert(0, starts[0])
	}
	if ends := wf.ChildrenOfTag(TagEnd); len(ends) == 1 && wf.Child(-1) != ends[0] {
		wf.Remove(ends[0])
		wf.Append(ends[0])
	}
}

func repairTransitions(action *Node, endName, killName string) {
	if action.CountOfTag(TagOk) < 1 {
		action.Append(NewOk(endName))
	}
	if action.CountOfTag(TagError) < 1 {
		action.Append(NewError(killName))
	}
	// error goes last first, so placing ok before it cannot displace it again
	if errs := action.ChildrenOfTag(TagError); len(errs) == 1 && action.Child(-1) != errs[0] {
		action.Remove(errs[0])
		action.Append(errs[0])
	}
	if oks := action.ChildrenOfTag(TagOk); len(oks) == 1 && action.Child(-2) != oks[0] {
		action.Remove(oks[0])
		action.Insert(action.Len()-1, oks[0])
	}
}

func (wf *Workflow) createMissingTargets(endName, killName string) {
	missing := utils.Difference(wf.Targets(), wf.NodeNames())
	if len(missing) == 0 {
		return
	}

	endNames := toSet(append(targetsOfTag(wf, TagOk), endName))
	killNames := toSet(append(targetsOfTag(wf, TagError), killName))

	for _, name := range missing {
		switch {
		case endNames[name]:
			log.Warnf("implicitly creating end node %q", name)
			wf.Append(NewEnd(name))
		case killNames[name]:
			log.Warnf("implicitly creating kill node %q", name)
			wf.Append(NewKill(name, KillMessage))
		}
	}
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
