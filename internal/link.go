package internal

// DependencyLink is one edge between a dependency set and a subscribing effect.
// Each link sits in two lists: the dep's subscribers and the effect's dependencies.
type DependencyLink struct {
	dep *Dep
	sub *Effect

	prevDep *DependencyLink
	nextDep *DependencyLink

	prevSub *DependencyLink
	nextSub *DependencyLink
}

// Dep is the set of effects depending on one (target, key) pair.
// Subscribers are kept in subscription order.
type Dep struct {
	target any
	key    any

	subsHead *DependencyLink
	links    map[*Effect]*DependencyLink
}

func newDep(target, key any) *Dep {
	return &Dep{
		target: target,
		key:    key,
		links:  make(map[*Effect]*DependencyLink),
	}
}

// Link creates a bidirectional link between the dep and the effect.
// Returns false if the effect already depends on it.
func (d *Dep) Link(sub *Effect) bool {
	if _, ok := d.links[sub]; ok {
		return false
	}

	link := &DependencyLink{dep: d, sub: sub}
	d.links[sub] = link

	d.addSubLink(link)
	sub.addDepLink(link)

	return true
}

func (d *Dep) Len() int { return len(d.links) }

// Subs returns the subscribers in subscription order.
func (d *Dep) Subs() []*Effect {
	subs := make([]*Effect, 0, len(d.links))
	for link := d.subsHead; link != nil; link = link.nextSub {
		subs = append(subs, link.sub)
	}

	return subs
}

func (d *Dep) addSubLink(link *DependencyLink) {
	if d.subsHead == nil {
		d.subsHead = link
		link.prevSub = link // loop to self
		link.nextSub = nil
	} else {
		tail := d.subsHead.prevSub
		tail.nextSub = link
		link.prevSub = tail
		link.nextSub = nil
		d.subsHead.prevSub = link
	}
}

func (d *Dep) removeSubLink(link *DependencyLink) {
	delete(d.links, link.sub)

	head := d.subsHead
	if link == head {
		d.subsHead = link.nextSub
		if d.subsHead != nil {
			d.subsHead.prevSub = link.prevSub
		}
	} else {
		link.prevSub.nextSub = link.nextSub
		if link.nextSub != nil {
			link.nextSub.prevSub = link.prevSub
		} else {
			head.prevSub = link.prevSub
		}
	}

	link.prevSub = nil
	link.nextSub = nil
}
