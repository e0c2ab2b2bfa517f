package utils

import (
	"context"
	"fmt"
)

// Letter is a message together with the thread that posted it.
type Letter[T any] struct {
	From int
	Msg  T
}

// MailBox connects NP threads with one inbound channel each. Delivery from a
// single sender to a single receiver is ordered.
type MailBox[T any] struct {
	NP           int
	MessageChans []chan Letter[T] // One for each thread
}

func NewMailBox[T any](NP, depth int) *MailBox[T] {
	if depth < NP {
		depth = NP // Worst case is all-to-all
	}
	mb := &MailBox[T]{
		NP:           NP,
		MessageChans: make([]chan Letter[T], NP),
	}
	for n := 0; n < NP; n++ {
		mb.MessageChans[n] = make(chan Letter[T], depth)
	}
	return mb
}

func (mb *MailBox[T]) checkThread(n int) error {
	if n < 0 || n > mb.NP-1 {
		return fmt.Errorf("thread %d out of bounds [0,%d)", n, mb.NP)
	}
	return nil
}

// PostMessage blocks until the message is queued or ctx ends.
func (mb *MailBox[T]) PostMessage(ctx context.Context, myThread, targetThread int, msg T) error {
	if err := mb.checkThread(targetThread); err != nil {
		return err
	}
	select {
	case mb.MessageChans[targetThread] <- Letter[T]{From: myThread, Msg: msg}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReceiveMessage blocks until a message for myThread arrives or ctx ends.
func (mb *MailBox[T]) ReceiveMessage(ctx context.Context, myThread int) (l Letter[T], err error) {
	if err = mb.checkThread(myThread); err != nil {
		return
	}
	select {
	case l = <-mb.MessageChans[myThread]:
	case <-ctx.Done():
		err = ctx.Err()
	}
	return
}

// ReceiveMyMessages drains whatever is queued for myThread without blocking.
func (mb *MailBox[T]) ReceiveMyMessages(myThread int) (letters []Letter[T]) {
	for {
		select {
		case l := <-mb.MessageChans[myThread]:
			letters = append(letters, l)
		default:
			return
		}
	}
}

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree < 1 {
		ParallelDegree = 1
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucket(kDim int) (bucketNum, min, max int) {
	if kDim < 0 || kDim >= pm.MaxIndex {
		return -1, 0, 0
	}
	// Initial guess
	bucketNum = int(float64(pm.ParallelDegree*kDim) / float64(pm.MaxIndex))
	for !(pm.Partitions[bucketNum][0] <= kDim && pm.Partitions[bucketNum][1] > kDim) {
		if pm.Partitions[bucketNum][0] > kDim {
			bucketNum--
		} else {
			bucketNum++
		}
		if bucketNum == -1 || bucketNum == pm.ParallelDegree {
			return -1, 0, 0
		}
	}
	min, max = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetLocalK(baseK int) (k, Kmax, bn int) {
	var (
		kmin, kmax int
	)
	bn, kmin, kmax = pm.GetBucket(baseK)
	Kmax = kmax - kmin
	k = baseK - kmin
	return
}

func (pm *PartitionMap) GetGlobalK(kLocal, bn int) (kGlobal int) {
	if bn == -1 {
		kGlobal = kLocal
		return
	}
	kGlobal = pm.Partitions[bn][0] + kLocal
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (kMax int) {
	if bn == -1 {
		kMax = pm.MaxIndex
		return
	}
	var (
		k1, k2 = pm.GetBucketRange(bn)
	)
	kMax = k2 - k1
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// This routine splits one dimension into c.ParallelDegree pieces, with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}
